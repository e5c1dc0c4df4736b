package filesink

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Purge deletes closed segments in dir whose end timestamp is older
// than retention relative to now, returning the names of the files it
// removed. Segments still open (suffix ".open") are never touched.
func Purge(dir string, retention time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("filesink: %w", err)
	}

	thresholdNs := now.Add(-retention).UnixNano()
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		endNs, err := segmentEndNs(entry.Name())
		if err != nil {
			continue
		}
		if endNs < thresholdNs {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return removed, fmt.Errorf("filesink: removing %s: %w", entry.Name(), err)
			}
			removed = append(removed, entry.Name())
		}
	}
	return removed, nil
}

// segmentEndNs parses the end timestamp out of a closed segment's
// filename, of the form nanolog_{start}_{end}.nanolog[.zst].
func segmentEndNs(name string) (int64, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".zst"), ".nanolog")
	if base == name {
		return 0, fmt.Errorf("not a closed segment: %s", name)
	}
	parts := strings.Split(strings.TrimPrefix(base, "nanolog_"), "_")
	if len(parts) != 2 {
		return 0, fmt.Errorf("unexpected segment name: %s", name)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}
