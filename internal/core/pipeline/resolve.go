package pipeline

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// mediaExts are the container extensions a finished transfer can end
// up in. Partial fragments (.part, .ytdl, .fNNN intermediates with
// other extensions) are filtered out by omission.
var mediaExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// mergedExt is the container the merge step writes; it wins over any
// other candidate regardless of size.
const mergedExt = ".mp4"

type artifactCandidate struct {
	path    string
	size    int64
	modTime time.Time
}

// resolveArtifact scans the working directory tree and picks the one
// file the transfer produced. Preference: merge-output container
// first, then largest, then most recently modified. An empty result
// set is ErrNoArtifact.
func resolveArtifact(dir string) (string, int64, error) {
	var all []artifactCandidate
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !mediaExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // vanished mid-scan
		}
		all = append(all, artifactCandidate{path: path, size: info.Size(), modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	if len(all) == 0 {
		return "", 0, ErrNoArtifact
	}

	pool := all
	var merged []artifactCandidate
	for _, c := range all {
		if strings.EqualFold(filepath.Ext(c.path), mergedExt) {
			merged = append(merged, c)
		}
	}
	if len(merged) > 0 {
		pool = merged
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].size != pool[j].size {
			return pool[i].size > pool[j].size
		}
		return pool[i].modTime.After(pool[j].modTime)
	})
	return pool[0].path, pool[0].size, nil
}

// MoveFile relocates an artifact out of the working directory before
// Acquire removes it. Rename first, copy when the destination is on
// another filesystem.
func MoveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
