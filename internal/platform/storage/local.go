package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalStore keeps uploaded binaries on the local filesystem under a
// root directory. The storage key doubles as the relative path.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) LocalStore {
	if root == "" {
		root = "data/uploads"
	}
	return LocalStore{Root: root}
}

func (s LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}
