// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const codeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

const (
	// CodeLenShort is used for regular uploads, CodeLenLong for
	// litterbox uploads and uploads explicitly marked temporary
	CodeLenShort = 6
	CodeLenLong  = 16

	maxCodeAttempts = 20

	// Blob keys don't need to be guessable or short, just unique enough
	blobKeyLen = 21
)

// ErrCodeExhausted means 20 candidate codes in a row were already taken.
// At these lengths that points at a near-full keyspace or a broken
// uniqueness check, so it has to surface instead of being retried forever
var ErrCodeExhausted = errors.New("could not allocate a unique code")

// AllocateCode draws random codes of the given length until exists says
// the candidate is free. Generation only, no side effects; the caller
// still has to win the insert
func AllocateCode(length int, exists func(string) (bool, error)) (string, error) {
	for range maxCodeAttempts {
		code, err := gonanoid.Generate(codeCharset, length)
		if err != nil {
			return "", err
		}

		taken, err := exists(code)
		if err != nil {
			return "", err
		}

		if !taken {
			return code, nil
		}
	}

	return "", ErrCodeExhausted
}

// BlobKey generates the storage name for a new ciphertext object. The
// .enc suffix marks the object as encrypted
func BlobKey() (string, error) {
	name, err := gonanoid.Generate(codeCharset, blobKeyLen)
	if err != nil {
		return "", err
	}

	return name + ".enc", nil
}
