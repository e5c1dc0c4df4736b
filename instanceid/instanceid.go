// Package instanceid gives a process a stable identity across
// restarts: a UUID cached in a file under the user's home directory,
// generated once and reused from then on. Writers commonly use this
// as their default WriterProp name when nothing more specific (a
// hostname, a service name) is configured.
package instanceid

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirName is the directory under the user's home directory where the
// cached id file lives.
const DirName = ".nanolog"

// FileName is the name of the cached id file within DirName.
const FileName = "id"

// Ensure returns this machine's cached nanolog instance id, creating
// one if none exists yet. If the home directory can't be determined
// or written to, it falls back to a fresh, non-persisted id so
// callers always get a usable value.
func Ensure() string {
	id, _ := EnsureFile()
	return id
}

// EnsureFile is Ensure but also reports whether the id came from (or
// was successfully written to) disk, versus being an ephemeral
// fallback.
func EnsureFile() (id string, persisted bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return uuid.New().String(), false
	}

	dir := filepath.Join(homeDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return uuid.New().String(), false
	}

	path := filepath.Join(dir, FileName)
	if data, err := os.ReadFile(path); err == nil {
		if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
			return trimmed, true
		}
	}

	fresh := uuid.New().String()
	if err := os.WriteFile(path, []byte(fresh), 0o644); err != nil {
		return fresh, false
	}
	return fresh, true
}
