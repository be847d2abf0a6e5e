package security

import (
	"bitwise74/file-vault/internal/model"
	"encoding/hex"
	"errors"
)

// Custodian decides where per-file key material lives. The default keeps
// key, IV and tag on the metadata record itself, which means a metadata
// store compromise also hands over the keys. Deployments that care should
// plug in a custodian backed by an external KMS instead
type Custodian interface {
	Seal(f *model.File, key, iv, tag []byte) error
	Open(f *model.File) (key, iv, tag []byte, err error)
}

// InlineCustodian stores hex-encoded key material in the record fields
type InlineCustodian struct{}

func (InlineCustodian) Seal(f *model.File, key, iv, tag []byte) error {
	f.EncryptionKey = hex.EncodeToString(key)
	f.EncryptionIV = hex.EncodeToString(iv)
	f.AuthTag = hex.EncodeToString(tag)
	return nil
}

func (InlineCustodian) Open(f *model.File) (key, iv, tag []byte, err error) {
	if f.EncryptionKey == "" || f.EncryptionIV == "" || f.AuthTag == "" {
		return nil, nil, nil, errors.New("record is missing key material")
	}

	if key, err = hex.DecodeString(f.EncryptionKey); err != nil {
		return nil, nil, nil, err
	}
	if iv, err = hex.DecodeString(f.EncryptionIV); err != nil {
		return nil, nil, nil, err
	}
	if tag, err = hex.DecodeString(f.AuthTag); err != nil {
		return nil, nil, nil, err
	}

	return key, iv, tag, nil
}
