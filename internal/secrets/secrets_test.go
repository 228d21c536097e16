// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate writes files into a fresh directory and creates subdirs.
func populate(t *testing.T, files map[string]string, subdirs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	for _, d := range subdirs {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o700))
	}
	return dir
}

func TestLoadDirectory(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		subdirs []string
		want    Secrets
	}{
		{
			name:  "values are trimmed",
			files: map[string]string{ClientSecret: "  cs_abc123  \n", MockSigningKey: "mk_xyz789\n"},
			want:  Secrets{ClientSecret: "cs_abc123", MockSigningKey: "mk_xyz789"},
		},
		{
			name:  "blank files are ignored",
			files: map[string]string{ClientSecret: "valid", "empty": "", "spaces": " \n\t "},
			want:  Secrets{ClientSecret: "valid"},
		},
		{
			name:  "dotfiles are ignored",
			files: map[string]string{".gitkeep": "", ".hidden": "secret", MockSigningKey: "mk"},
			want:  Secrets{MockSigningKey: "mk"},
		},
		{
			name:    "directories are ignored",
			files:   map[string]string{ClientSecret: "cs"},
			subdirs: []string{"nested"},
			want:    Secrets{ClientSecret: "cs"},
		},
		{
			name: "empty directory",
			want: Secrets{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(populate(t, tt.files, tt.subdirs...), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingDirectoryIsEmpty(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent"), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSkipsUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	dir := populate(t, map[string]string{ClientSecret: "cs"})
	locked := filepath.Join(dir, MockSigningKey)
	require.NoError(t, os.WriteFile(locked, []byte("mk"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o600) })

	got, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Secrets{ClientSecret: "cs"}, got)
}

func TestGetPrefersExplicitValue(t *testing.T) {
	s := Secrets{ClientSecret: "from-file"}

	assert.Equal(t, "from-flag", s.Get(ClientSecret, "from-flag"))
	assert.Equal(t, "from-file", s.Get(ClientSecret, ""))
	assert.Empty(t, s.Get(MockSigningKey, ""))
}

func TestKeysAreSorted(t *testing.T) {
	s := Secrets{MockSigningKey: "b", ClientSecret: "a"}
	assert.Equal(t, []string{ClientSecret, MockSigningKey}, s.Keys())
}
