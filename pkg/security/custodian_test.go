package security

import (
	"bitwise74/file-vault/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineCustodian_Roundtrip(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	iv := []byte{5, 6, 7, 8}
	tag := []byte{9, 10, 11, 12}

	var f model.File
	require.NoError(t, InlineCustodian{}.Seal(&f, key, iv, tag))

	assert.NotEmpty(t, f.EncryptionKey)
	assert.NotEmpty(t, f.EncryptionIV)
	assert.NotEmpty(t, f.AuthTag)

	gotKey, gotIV, gotTag, err := InlineCustodian{}.Open(&f)
	require.NoError(t, err)
	assert.Equal(t, key, gotKey)
	assert.Equal(t, iv, gotIV)
	assert.Equal(t, tag, gotTag)
}

func TestInlineCustodian_MissingMaterial(t *testing.T) {
	_, _, _, err := InlineCustodian{}.Open(&model.File{})
	assert.Error(t, err)
}
