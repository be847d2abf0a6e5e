package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps ciphertext as flat files in one directory. Meant for
// local setups where running against a bucket is overkill
type LocalStore struct {
	dir string
}

func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &LocalStore{dir: dir}, nil
}

// path rejects keys that would escape the storage directory
func (l *LocalStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}

	return filepath.Join(l.dir, key), nil
}

func (l *LocalStore) Put(_ context.Context, key string, data []byte) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	return os.WriteFile(p, data, 0o600)
}

func (l *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}

		return nil, err
	}

	return data, nil
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}

	return err
}

func (l *LocalStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, e.Name())
		}
	}

	return keys, nil
}
