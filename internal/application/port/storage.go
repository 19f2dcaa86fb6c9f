package port

import "context"

// FileStorage stores exported documents below a base directory
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Exists(ctx context.Context, path string) bool
	GetFullPath(relativePath string) string
}
