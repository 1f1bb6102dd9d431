// Package moveio performs the actual filesystem moves an executor applies
// from a planpkg.Operation (§6): atomic rename within a device, copy+unlink
// across devices, always taking sidecars along with their master.
package moveio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/planpkg"
)

var log = logging.L("moveio")

// Move relocates op.Path to op.MoveTo, creating target parent directories as
// needed, then moves every sidecar alongside it. It never deletes data
// outright: a failed cross-device copy leaves the source untouched.
func Move(op planpkg.Operation) error {
	if op.MoveTo == "" {
		return fmt.Errorf("moveio: operation on %q has no destination", op.Path)
	}

	if err := moveOne(op.Path, op.MoveTo); err != nil {
		return err
	}

	srcDir := filepath.Dir(op.Path)
	destDir := filepath.Dir(op.MoveTo)
	for _, sidecar := range op.SidecarFiles {
		from := filepath.Join(srcDir, sidecar)
		to := filepath.Join(destDir, sidecar)
		if err := moveOne(from, to); err != nil {
			log.Warn("sidecar move failed", "from", from, "to", to, "error", err)
			return err
		}
	}
	return nil
}

// moveOne relocates a single path, preferring an atomic rename and falling
// back to copy+unlink when source and destination straddle devices.
func moveOne(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("moveio: create target directory for %q: %w", to, err)
	}

	// A directory whose children were moved first may find its destination
	// directory already in place; an emptied source is then folded into it.
	if fromInfo, err := os.Stat(from); err == nil && fromInfo.IsDir() {
		if toInfo, err := os.Stat(to); err == nil && toInfo.IsDir() {
			if err := os.Remove(from); err == nil {
				return nil
			}
		}
	}

	if err := os.Remove(to); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("moveio: clear existing destination %q: %w", to, err)
	}

	err := os.Rename(from, to)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("moveio: rename %q to %q: %w", from, to, err)
	}

	log.Debug("rename crosses device, falling back to copy", "from", from, "to", to)
	if err := copyThenUnlink(from, to); err != nil {
		return fmt.Errorf("moveio: copy %q to %q: %w", from, to, err)
	}
	return nil
}

func copyThenUnlink(from, to string) error {
	srcFile, err := os.Open(from)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(destFile, srcFile)
	closeErr := destFile.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(to)
		return copyErr
	}
	if err := os.Chtimes(to, info.ModTime(), info.ModTime()); err != nil {
		log.Debug("could not preserve mtime on copy", "path", to, "error", err)
	}

	if err := srcFile.Close(); err != nil {
		return err
	}
	return os.Remove(from)
}
