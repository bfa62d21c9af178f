// Package filestore persists uploaded invoice documents on local disk.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/integrity"
)

// LocalStore writes documents under a base directory, one subdirectory per
// month. Stored names are generated, never taken from the upload, so path
// traversal in an original filename cannot escape the store.
type LocalStore struct {
	baseDir string
	now     func() time.Time
}

// NewLocalStore creates the store, ensuring the base directory exists.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir, now: time.Now}, nil
}

var _ portssvc.FileStore = (*LocalStore)(nil)

func (s *LocalStore) Save(ctx context.Context, data []byte, originalFilename string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	subdir := s.now().Format("2006-01")
	relPath := filepath.Join(subdir, uuid.NewString()+ext)

	absDir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create directory %q: %w", absDir, err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, relPath), data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}
	return relPath, integrity.SHA256Hex(data), nil
}

func (s *LocalStore) Read(ctx context.Context, relPath string) ([]byte, error) {
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid file reference %q", relPath)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file %q: %w", relPath, err)
	}
	return data, nil
}
