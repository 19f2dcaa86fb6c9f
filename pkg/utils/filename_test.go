package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"240613-42", "240613-42"},
		{"  INV 2024/06  ", "INV-2024-06"},
		{`a"b\c`, "a-b-c"},
		{"../../etc/passwd", "etc-passwd"},
		{"line\r\nbreak", "linebreak"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("a\x00b\x7fc"))
}
