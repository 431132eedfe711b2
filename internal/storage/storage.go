// Package storage provides object storage for uploaded documents. The
// ingestion worker reads documents back from here, so the store is the
// source of truth between upload and indexing.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore reads and writes immutable document blobs addressed by
// bucket and key.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
}

// FilesystemStore keeps objects under root/bucket/key on local disk.
// It is the default backend for development and single-node deployments.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates the root directory if it does not exist.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) objectPath(bucket, key string) (string, error) {
	p := filepath.Join(s.root, bucket, filepath.FromSlash(key))

	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return p, nil
}

// Get reads the object bytes.
func (s *FilesystemStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Put writes the object bytes, creating parent directories as needed.
func (s *FilesystemStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("failed to write object %s/%s: %w", bucket, key, err)
	}
	return nil
}
