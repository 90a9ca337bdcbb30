package secrets

import (
	"path/filepath"
	"testing"

	"github.com/Argha713/mcp-pipeline-server/internal/authz"
)

func mustIdentity(t *testing.T) *AgeEncryptor {
	t.Helper()
	id, err := GenerateAgeIdentity()
	if err != nil {
		t.Fatalf("GenerateAgeIdentity: %v", err)
	}
	return NewAgeEncryptor(id)
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	enc := mustIdentity(t)

	plaintext := []byte(`{"hello":"world"}`)
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if string(ciphertext) == string(plaintext) {
		t.Fatal("ciphertext must not equal plaintext")
	}

	got, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestAgeEncryptor_WrongIdentityFailsToDecrypt(t *testing.T) {
	enc := mustIdentity(t)
	ciphertext, err := enc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	other := mustIdentity(t)
	if _, err := other.Decrypt(ciphertext); err == nil {
		t.Fatal("expected decryption with the wrong identity to fail")
	}
}

func TestParseAgeIdentity_RoundTripsStringForm(t *testing.T) {
	id, err := GenerateAgeIdentity()
	if err != nil {
		t.Fatalf("GenerateAgeIdentity: %v", err)
	}
	parsed, err := ParseAgeIdentity(id.String())
	if err != nil {
		t.Fatalf("ParseAgeIdentity: %v", err)
	}
	if parsed.Recipient().String() != id.Recipient().String() {
		t.Fatal("parsed identity's recipient does not match the original")
	}
}

func TestIdentityStore_MissingFileIsEmptyNotError(t *testing.T) {
	enc := mustIdentity(t)
	store := NewIdentityStore(filepath.Join(t.TempDir(), "identities.age"), enc)

	identities, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(identities) != 0 {
		t.Fatalf("expected empty table for missing file, got %v", identities)
	}
}

func TestIdentityStore_SaveThenLoad(t *testing.T) {
	enc := mustIdentity(t)
	store := NewIdentityStore(filepath.Join(t.TempDir(), "identities.age"), enc)

	want := []authz.Identity{
		{Key: "k1", Name: "alice", AllowedTools: []string{"datetime"}},
		{Key: "k2", Name: "bob", AllowedActions: map[string][]string{"text_transform": {"uppercase"}}},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d identities, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Key != want[i].Key || got[i].Name != want[i].Name {
			t.Fatalf("identity %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
