package source

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope layout: magic(8) + salt(16) + nonce(12) + ciphertext + tag(16).
const (
	envelopeMagic = "GCM3NCR0"
	saltLen       = 16
	nonceLen      = 12
	tagLen        = 16
	kdfIterations = 100000
	keyLen        = 32
)

// isEnvelope reports whether data starts with the envelope magic.
func isEnvelope(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopeMagic))
}

// decryptEnvelope opens a GCM3NCR0 envelope with a PBKDF2-SHA256 derived key.
func decryptEnvelope(data []byte, password string) ([]byte, error) {
	if len(data) < len(envelopeMagic)+saltLen+nonceLen+tagLen {
		return nil, fmt.Errorf("GCM data too short: %d bytes", len(data))
	}
	off := len(envelopeMagic)
	salt := data[off : off+saltLen]
	nonce := data[off+saltLen : off+saltLen+nonceLen]
	sealed := data[off+saltLen+nonceLen:]

	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("GCM decryption failed: %w", err)
	}
	return plain, nil
}

// decryptInPlace replaces an enveloped file with its plaintext. Files without
// the envelope magic are left untouched.
func decryptInPlace(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !isEnvelope(data) {
		return nil
	}
	plain, err := decryptEnvelope(data, password)
	if err != nil {
		return fmt.Errorf("failed to decrypt data: %w", err)
	}
	return os.WriteFile(path, plain, 0o600)
}
