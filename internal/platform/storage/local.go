package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files on disk under uploadDir and serves them at
// baseURL/uploads/.
type Local struct {
	uploadDir string
	baseURL   string
}

func NewLocal(uploadDir, baseURL string) *Local {
	return &Local{uploadDir: uploadDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Dir returns the root directory, for mounting a static file server.
func (l *Local) Dir() string { return l.uploadDir }

func (l *Local) Store(ctx context.Context, data []byte, filename, folder string) (string, error) {
	targetDir := filepath.Join(l.uploadDir, folder)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	// Random names avoid collisions between users submitting to the same
	// challenge.
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(targetDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return l.baseURL + "/uploads/" + folder + "/" + name, nil
}

func (l *Local) Delete(ctx context.Context, fileURL string) error {
	prefix := l.baseURL + "/uploads/"
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("url %q is not served by this storage", fileURL)
	}
	rel := strings.TrimPrefix(fileURL, prefix)
	if strings.Contains(rel, "..") {
		return fmt.Errorf("refusing path traversal in %q", fileURL)
	}
	err := os.Remove(filepath.Join(l.uploadDir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
