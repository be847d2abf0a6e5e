package security

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	e := NewEngine()
	plaintext := []byte("hello, encrypted file storage!")

	ciphertext, key, iv, tag, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	assert.Len(t, key, 32)
	assert.Len(t, iv, 16)
	assert.Len(t, tag, 16)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := e.Decrypt(ciphertext, key, iv, tag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncrypt_FreshKeyPerCall(t *testing.T) {
	e := NewEngine()
	plaintext := []byte("same input twice")

	ct1, key1, iv1, _, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	ct2, key2, iv2, _, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	e := NewEngine()

	ciphertext, key, iv, tag, err := e.Encrypt([]byte("integrity matters"))
	require.NoError(t, err)

	for i := range ciphertext {
		mutated := bytes.Clone(ciphertext)
		mutated[i] ^= 0x01

		_, err := e.Decrypt(mutated, key, iv, tag)
		assert.ErrorIs(t, err, ErrAuthenticationFailure, "flipped ciphertext byte %d must not decrypt", i)
	}
}

func TestDecrypt_TamperedTag(t *testing.T) {
	e := NewEngine()

	ciphertext, key, iv, tag, err := e.Encrypt([]byte("integrity matters"))
	require.NoError(t, err)

	for i := range tag {
		mutated := bytes.Clone(tag)
		mutated[i] ^= 0x01

		_, err := e.Decrypt(ciphertext, key, iv, mutated)
		assert.ErrorIs(t, err, ErrAuthenticationFailure, "flipped tag byte %d must not verify", i)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	e := NewEngine()

	ciphertext, _, iv, tag, err := e.Encrypt([]byte("secret data"))
	require.NoError(t, err)

	wrongKey := make([]byte, 32)
	_, err = e.Decrypt(ciphertext, wrongKey, iv, tag)
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
}

func TestEncrypt_LargePayload(t *testing.T) {
	e := NewEngine()

	plaintext := make([]byte, 1<<20)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}

	ciphertext, key, iv, tag, err := e.Encrypt(plaintext)
	require.NoError(t, err)

	decrypted, err := e.Decrypt(ciphertext, key, iv, tag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEngine_InjectedRand(t *testing.T) {
	// A deterministic source must give reproducible key material
	e1 := NewEngineWithRand(rand.New(rand.NewSource(42)))
	e2 := NewEngineWithRand(rand.New(rand.NewSource(42)))

	ct1, key1, iv1, tag1, err := e1.Encrypt([]byte("deterministic"))
	require.NoError(t, err)

	ct2, key2, iv2, tag2, err := e2.Encrypt([]byte("deterministic"))
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
	assert.Equal(t, iv1, iv2)
	assert.Equal(t, ct1, ct2)
	assert.Equal(t, tag1, tag2)
}
