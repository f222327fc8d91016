package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/phrazzld/memoria/internal/platform/generationapi"
	"github.com/phrazzld/memoria/internal/store"
)

// ErrNotLoggedIn is returned when there is no usable session file.
var ErrNotLoggedIn = fmt.Errorf("%w: not logged in (run \"memoria auth login\")", store.ErrUnauthenticated)

// SessionFile keeps the credentials of the last login on disk.
type SessionFile struct {
	path string
	now  func() time.Time
}

// NewSessionFile uses path, or DefaultSessionPath when path is empty.
func NewSessionFile(path string) (*SessionFile, error) {
	if path == "" {
		var err error
		if path, err = DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return &SessionFile{path: path, now: time.Now}, nil
}

// DefaultSessionPath is memoria/session.json under the user config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "memoria", "session.json"), nil
}

// Path returns the file location.
func (f *SessionFile) Path() string {
	return f.path
}

// Load returns the stored credentials. A missing, incomplete or expired
// session is ErrNotLoggedIn.
func (f *SessionFile) Load() (generationapi.Credentials, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return generationapi.Credentials{}, ErrNotLoggedIn
	}
	if err != nil {
		return generationapi.Credentials{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var creds generationapi.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return generationapi.Credentials{}, fmt.Errorf("failed to parse session file %s: %w", f.path, err)
	}
	if creds.UserID == "" || creds.Token == "" {
		return generationapi.Credentials{}, ErrNotLoggedIn
	}
	if !creds.ExpiresAt.IsZero() && !f.now().Before(creds.ExpiresAt) {
		return generationapi.Credentials{}, fmt.Errorf("%w: session expired", ErrNotLoggedIn)
	}
	return creds, nil
}

// Save writes creds readable by the current user only.
func (f *SessionFile) Save(creds generationapi.Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Remove deletes the session file. A missing file is not an error.
func (f *SessionFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
