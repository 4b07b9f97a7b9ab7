//go:build unix

package dedup

import (
	"fmt"
	"os"
	"path/filepath"
)

// linkViaStaging reserves a unique staging name next to target with
// os.CreateTemp (the same collision-proof naming internal/database.Writer
// uses for its own staging file), has create populate that name, then
// renames it into place. A unique name per call means there is never a
// stale leftover to reconcile on the next run, unlike a fixed suffix name
// that two interrupted runs could collide on.
func linkViaStaging(target string, create func(tmp string) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".hashdog-link-*.tmp")
	if err != nil {
		return fmt.Errorf("reserve staging name: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	if err := os.Remove(tmpPath); err != nil {
		return fmt.Errorf("clear staging placeholder: %w", err)
	}

	if err := create(tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// CreateHardlink links target to source atomically via a uniquely-named
// staging file plus rename, so a reader never observes a half-created link.
func CreateHardlink(source, target string) error {
	return linkViaStaging(target, func(tmp string) error {
		return os.Link(source, tmp)
	})
}

// CreateSymlink links target to source via a relative symlink, used when
// CreateHardlink fails across device boundaries (EXDEV). Staged the same
// way as CreateHardlink.
func CreateSymlink(source, target string) error {
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source missing before symlink creation: %w", err)
	}

	relPath, err := filepath.Rel(filepath.Dir(target), source)
	if err != nil {
		relPath = source
	}

	return linkViaStaging(target, func(tmp string) error {
		return os.Symlink(relPath, tmp)
	})
}
