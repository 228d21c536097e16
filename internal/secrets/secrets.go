// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials kept outside the config file. The
// secrets directory holds one file per key; the file name is the key and
// the trimmed contents are its value.
//
// Recognized key files: client-secret (the OAuth2 client secret) and
// mock-signing-key (the HS256 key for mock tokens).
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Key files read by the CLI.
const (
	ClientSecret   = "client-secret"
	MockSigningKey = "mock-signing-key"
)

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Load collects the key files in dir. An absent directory yields an empty
// set. Dotfiles, subdirectories and blank files are ignored; a file that
// cannot be read is logged and left out.
func Load(dir string, log zerolog.Logger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Secrets{}, nil
	case err != nil:
		return nil, fmt.Errorf("listing secrets in %s: %w", dir, err)
	}

	out := make(Secrets, len(entries))
	for _, e := range entries {
		key, ok := keyFile(e)
		if !ok {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, key))
		if err != nil {
			log.Warn().Err(err).Str("secret", key).Msg("skipping unreadable secret")
			continue
		}
		if v := strings.TrimSpace(string(raw)); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

func keyFile(e fs.DirEntry) (string, bool) {
	name := e.Name()
	return name, !e.IsDir() && !strings.HasPrefix(name, ".")
}

// Get returns explicit when it is set, otherwise the secret stored under key.
func (s Secrets) Get(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys lists the loaded key names in order. Values are never listed.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
