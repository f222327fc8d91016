package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoria/internal/platform/generationapi"
	"github.com/phrazzld/memoria/internal/store"
)

func TestSessionFile_SaveLoadRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "memoria", "session.json")
	f, err := NewSessionFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())

	want := generationapi.Credentials{
		UserID:    "user-1",
		Token:     "token-1",
		ExpiresAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, f.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Token, got.Token)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, f.Remove())
	_, err = f.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	require.NoError(t, f.Remove(), "removing a missing file")
}

func TestSessionFile_Load(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		content   string
		wantErr   error
		wantValid bool
	}{
		{
			name:      "valid",
			content:   `{"user_id":"u","token":"t","expires_at":"2026-10-16T13:00:00Z"}`,
			wantValid: true,
		},
		{
			name:      "no expiry",
			content:   `{"user_id":"u","token":"t"}`,
			wantValid: true,
		},
		{
			name:    "expired",
			content: `{"user_id":"u","token":"t","expires_at":"2026-10-16T12:00:00Z"}`,
			wantErr: ErrNotLoggedIn,
		},
		{
			name:    "missing token",
			content: `{"user_id":"u"}`,
			wantErr: ErrNotLoggedIn,
		},
		{
			name:    "corrupt",
			content: `{"user_id":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			f := &SessionFile{path: path, now: func() time.Time { return now }}

			creds, err := f.Load()
			if tt.wantValid {
				require.NoError(t, err)
				assert.Equal(t, "u", creds.UserID)
				assert.Equal(t, "u", creds.Session().UserID)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, store.ErrUnauthenticated)
			} else {
				assert.NotErrorIs(t, err, ErrNotLoggedIn)
			}
		})
	}
}

func TestDefaultSessionPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)

	f, err := NewSessionFile("")
	require.NoError(t, err)
	assert.Equal(t, "session.json", filepath.Base(f.Path()))
	assert.Equal(t, "memoria", filepath.Base(filepath.Dir(f.Path())))
}
