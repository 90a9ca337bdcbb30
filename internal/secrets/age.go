// Package secrets encrypts the identity/authorization table at rest using
// age (filippo.io/age), the way the teacher repo encrypts downstream
// credentials — adapted here to a single flat blob rather than a
// per-auth-scope database row, since spec.md rules out on-disk databases.
package secrets

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// AgeEncryptor encrypts and decrypts byte blobs with a single X25519
// identity. Safe for concurrent use (age's Encrypt/Decrypt hold no
// mutable state on the identity/recipient themselves).
type AgeEncryptor struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// NewAgeEncryptor builds an encryptor around identity, deriving its public
// recipient for encryption.
func NewAgeEncryptor(identity *age.X25519Identity) *AgeEncryptor {
	return &AgeEncryptor{identity: identity, recipient: identity.Recipient()}
}

// GenerateAgeIdentity creates a fresh X25519 identity for first-run setup.
func GenerateAgeIdentity() (*age.X25519Identity, error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generate age identity: %w", err)
	}
	return id, nil
}

// ParseAgeIdentity parses an identity previously produced by
// X25519Identity.String (or GenerateAgeIdentity), for loading a persisted
// key from config.
func ParseAgeIdentity(s string) (*age.X25519Identity, error) {
	id, err := age.ParseX25519Identity(s)
	if err != nil {
		return nil, fmt.Errorf("parse age identity: %w", err)
	}
	return id, nil
}

// Encrypt returns plaintext encrypted to e's recipient.
func (e *AgeEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.recipient)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("age encrypt write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("age encrypt close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt recovers the plaintext behind ciphertext, using e's identity.
func (e *AgeEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), e.identity)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("age decrypt read: %w", err)
	}
	return plaintext, nil
}
