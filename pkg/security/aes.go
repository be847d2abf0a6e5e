// Package security contains everything related to the security of user data
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	keyLen = 32
	ivLen  = 16
	tagLen = 16
)

// ErrAuthenticationFailure means the ciphertext or its tag didn't verify.
// Either the data was tampered with or the wrong key material was supplied
var ErrAuthenticationFailure = errors.New("ciphertext authentication failed")

// Engine encrypts file payloads with AES-256-GCM. Every Encrypt call draws
// a fresh key and IV, nothing is ever reused between files and nothing is
// stored here. Key custody is the caller's problem
type Engine struct {
	rand io.Reader
}

func NewEngine() *Engine {
	return &Engine{rand: rand.Reader}
}

// NewEngineWithRand swaps the randomness source. Only meant for tests
// that need reproducible key material
func NewEngineWithRand(r io.Reader) *Engine {
	return &Engine{rand: r}
}

// Encrypt seals plaintext under a fresh 256-bit key and 128-bit IV. The
// GCM tag is returned separately so it can be persisted as its own field
func (e *Engine) Encrypt(plaintext []byte) (ciphertext, key, iv, tag []byte, err error) {
	key = make([]byte, keyLen)
	if _, err = io.ReadFull(e.rand, key); err != nil {
		return nil, nil, nil, nil, err
	}

	iv = make([]byte, ivLen)
	if _, err = io.ReadFull(e.rand, iv); err != nil {
		return nil, nil, nil, nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)

	ciphertext = sealed[:len(sealed)-tagLen]
	tag = sealed[len(sealed)-tagLen:]
	return ciphertext, key, iv, tag, nil
}

// Decrypt reverses Encrypt. A tag that doesn't verify is a hard
// ErrAuthenticationFailure, never a partial decode
func (e *Engine) Decrypt(ciphertext, key, iv, tag []byte) ([]byte, error) {
	if len(iv) != ivLen || len(tag) != tagLen {
		return nil, ErrAuthenticationFailure
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+tagLen)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCMWithNonceSize(block, ivLen)
}
