package instanceid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFilePersistsAndReuses(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	id1, persisted := EnsureFile()
	if !persisted {
		t.Fatalf("expected id to be persisted under %s", home)
	}
	if id1 == "" {
		t.Fatalf("empty id")
	}

	path := filepath.Join(home, DirName, FileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("id file not written: %v", err)
	}

	id2, _ := EnsureFile()
	if id2 != id1 {
		t.Fatalf("id not stable across calls: %q then %q", id1, id2)
	}
}
