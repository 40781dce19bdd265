package examsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Identity is the exam-taker handed over by the login step.
type Identity struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// Complete reports whether both fields are present.
func (i Identity) Complete() bool {
	return strings.TrimSpace(i.UserName) != "" && strings.TrimSpace(i.Email) != ""
}

// FileIdentityStore keeps the handoff identity in a small JSON file, readable
// only by the current user.
type FileIdentityStore struct {
	Path string
}

// DefaultIdentityPath is the handoff file under the user cache dir.
func DefaultIdentityPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "exstem-proctor", "identity.json")
}

// Save writes the identity, replacing any previous one.
func (s FileIdentityStore) Save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// Load returns the stored identity; ok is false when none is stored or it is
// incomplete.
func (s FileIdentityStore) Load() (Identity, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false
	}
	return id, id.Complete()
}

// Clear removes the handoff file. A missing file is not an error.
func (s FileIdentityStore) Clear() {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Overwrite so a stale identity cannot start a second attempt.
		_ = os.WriteFile(s.Path, []byte("{}"), 0o600)
	}
}
