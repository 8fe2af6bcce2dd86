package storage

import "context"

// Storage persists uploaded photo bytes and serves them back by URL.
// Implementations own naming and layout; callers only keep the URL.
type Storage interface {
	// Store writes the file under the given folder and returns its public URL.
	Store(ctx context.Context, data []byte, filename, folder string) (string, error)
	// Delete removes a previously stored file by URL. Best-effort: callers
	// treat failures as non-fatal.
	Delete(ctx context.Context, fileURL string) error
}
