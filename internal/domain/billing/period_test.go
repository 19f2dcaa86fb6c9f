package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voldhaul/load-invoicing/internal/domain/entity"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "iso date", value: "2024-06-13", want: want},
		{name: "padded", value: "  2024-06-13 ", want: want},
		{name: "datetime truncates", value: "2024-06-13 17:45:00", want: want},
		{name: "rfc3339", value: "2024-06-13T17:45:00Z", want: want},
		{name: "us date", value: "06/13/2024", want: want},
		{name: "blank", value: "  ", wantErr: true},
		{name: "garbage", value: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("start", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, entity.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	p, err := NewPeriod("start", "2024-06-01", "end", "2024-06-13")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), p.From())
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), p.Until())
	assert.Equal(t, "2024-06-01", p.StartDate())
	assert.Equal(t, "2024-06-13", p.EndDate())
}

func TestPeriodBounds_MonthEnd(t *testing.T) {
	p, err := NewPeriod("start", "2024-02-01", "end", "2024-02-29")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.Until())
}

func TestNewPeriod_InvertedRangeAllowed(t *testing.T) {
	p, err := NewPeriod("start", "2024-06-13", "end", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, p.Until().Before(p.From()))
}

func TestNewPeriod_NamesFailingField(t *testing.T) {
	_, err := NewPeriod("start_date", "2024-06-01", "end_date", "")
	require.Error(t, err)

	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "end_date", verr.Field)
	assert.Equal(t, "end_date is required", verr.Error())
}
