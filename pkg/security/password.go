package security

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// FileHash hashes the optional per-file download passwords. Account
// passwords live in the auth service, this only guards file codes
type FileHash struct {
	Cost int
}

func NewFileHash() *FileHash {
	return &FileHash{Cost: bcryptCost}
}

func (h *FileHash) Generate(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Verify reports whether password matches the stored hash
func (h *FileHash) Verify(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
