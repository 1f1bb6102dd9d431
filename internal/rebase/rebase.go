// Package rebase computes recycle-bin destination paths by finding where
// a target path diverges from the source root and re-rooting the
// remaining segments onto a new base.
package rebase

import (
	"path/filepath"
	"strings"
)

// Rebase finds the first segment where base and target diverge after path
// resolution and appends the remaining segments of target to base (§4.12).
//
// Rebase("/volume1/photos/#recycle", "/volume1/photos/a/b/c.jpg") walks
// both paths segment by segment: "volume1" and "photos" match, then
// "#recycle" diverges from "a" — so the remaining target segments
// ["a", "b", "c.jpg"] are appended to base, yielding
// "/volume1/photos/#recycle/a/b/c.jpg". When target is already base's own
// subpath (target = base/sub), every one of base's segments matches and
// only "sub" remains, so Rebase(B, B/sub) == B/sub.
func Rebase(base, target string) string {
	cleanBase := filepath.Clean(base)
	baseSegs := segments(cleanBase)
	targetSegs := segments(filepath.Clean(target))

	i := 0
	for i < len(baseSegs) && i < len(targetSegs) && baseSegs[i] == targetSegs[i] {
		i++
	}

	parts := make([]string, 0, len(targetSegs)-i+1)
	parts = append(parts, cleanBase)
	parts = append(parts, targetSegs[i:]...)
	return filepath.Join(parts...)
}

// segments splits a cleaned path into its path components, dropping the
// leading separator so an absolute path's root doesn't show up as "".
func segments(p string) []string {
	trimmed := strings.TrimPrefix(filepath.ToSlash(p), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Onto computes the recycle-bin destination for path p, which lives
// somewhere under scanRoot, by re-rooting p's subpath (relative to
// scanRoot) onto recycleBinPath. This is the form §4.4/§4.6 use: the
// recycle bin mirrors the source subpath structure.
func Onto(scanRoot, recycleBinPath, p string) string {
	rel, err := filepath.Rel(scanRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		// p is not under scanRoot; fall back to joining the base name so we
		// never produce a path outside the recycle bin.
		return filepath.Join(recycleBinPath, filepath.Base(p))
	}
	return filepath.Join(recycleBinPath, rel)
}
