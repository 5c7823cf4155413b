package devicefs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ExpandDirectory returns one descriptor per regular file under localDir.
// Symlinks, directories and other special files are skipped.
func ExpandDirectory(localDir, deviceDir, appID string) ([]Descriptor, error) {
	var descs []Descriptor

	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}

		descs = append(descs, Descriptor{
			LocalPath:  p,
			DevicePath: path.Join(deviceDir, filepath.ToSlash(rel)),
			AppID:      appID,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", localDir, err)
	}

	return descs, nil
}

// regularOnly drops descriptors whose local path is not a regular file.
// It uses Lstat so a symlink is never followed. The number of dropped
// descriptors is returned alongside the kept ones.
func regularOnly(descs []Descriptor) ([]Descriptor, int, error) {
	kept := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		info, err := os.Lstat(d.LocalPath)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", d.LocalPath, err)
		}
		if info.Mode().IsRegular() {
			kept = append(kept, d)
		}
	}
	return kept, len(descs) - len(kept), nil
}
