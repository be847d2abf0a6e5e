// Package blob abstracts where ciphertext objects live. The pipelines only
// ever see this interface, the s3/local split stays in here
package blob

import (
	"context"
	"errors"

	"github.com/spf13/viper"
)

// ErrNotExist is returned by Get and Delete when no object is stored
// under the given key
var ErrNotExist = errors.New("blob does not exist")

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// New returns the store selected by storage.type
func New() (Store, error) {
	if viper.GetString("storage.type") == "s3" {
		return NewS3()
	}

	return NewLocal(viper.GetString("storage.local_path"))
}
