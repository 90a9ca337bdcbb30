package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Argha713/mcp-pipeline-server/internal/authz"
)

// identityRecord is the on-disk (pre-encryption) shape of one
// authz.Identity, flattened to plain JSON.
type identityRecord struct {
	Key            string              `json:"key"`
	Name           string              `json:"name"`
	AllowedTools   []string            `json:"allowedTools,omitempty"`
	AllowedActions map[string][]string `json:"allowedActions,omitempty"`
}

func toRecord(id authz.Identity) identityRecord {
	return identityRecord{
		Key:            id.Key,
		Name:           id.Name,
		AllowedTools:   id.AllowedTools,
		AllowedActions: id.AllowedActions,
	}
}

func (r identityRecord) toIdentity() authz.Identity {
	return authz.Identity{
		Key:            r.Key,
		Name:           r.Name,
		AllowedTools:   r.AllowedTools,
		AllowedActions: r.AllowedActions,
	}
}

// IdentityStore persists the authorization identity table as a single
// age-encrypted file, replacing the teacher's per-auth-scope SQLite rows
// with one flat at-rest blob (spec.md rules out any on-disk database).
type IdentityStore struct {
	path      string
	encryptor *AgeEncryptor
}

// NewIdentityStore creates an IdentityStore backed by path, encrypted with
// enc.
func NewIdentityStore(path string, enc *AgeEncryptor) *IdentityStore {
	return &IdentityStore{path: path, encryptor: enc}
}

// Load reads and decrypts the identity table. A missing file is treated
// as an empty table (first run), not an error.
func (s *IdentityStore) Load() ([]authz.Identity, error) {
	ciphertext, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity store: %w", err)
	}

	plaintext, err := s.encryptor.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt identity store: %w", err)
	}

	var records []identityRecord
	if err := json.Unmarshal(plaintext, &records); err != nil {
		return nil, fmt.Errorf("unmarshal identity store: %w", err)
	}

	identities := make([]authz.Identity, len(records))
	for i, r := range records {
		identities[i] = r.toIdentity()
	}
	return identities, nil
}

// Save encrypts and atomically replaces the identity table on disk.
func (s *IdentityStore) Save(identities []authz.Identity) error {
	records := make([]identityRecord, len(identities))
	for i, id := range identities {
		records[i] = toRecord(id)
	}

	plaintext, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal identity store: %w", err)
	}

	ciphertext, err := s.encryptor.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt identity store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create identity store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".identity-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp identity file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(ciphertext); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp identity file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace identity store: %w", err)
	}
	return nil
}
