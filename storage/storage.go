// Package storage abstracts where processed article images end up: an
// S3-compatible bucket when configured, the local filesystem otherwise.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a named byte buffer and returns the URL it is reachable at.
type Store interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// LocalStore writes files under Dir and returns paths below URLPrefix.
// It is the fallback when no object storage is configured.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{
		Dir:       dir,
		URLPrefix: "/" + strings.TrimPrefix(filepath.ToSlash(dir), "/"),
	}
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}
