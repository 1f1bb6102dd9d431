// Package permissions flags entries whose POSIX mode differs from the
// configured file/dir mode (§4.8).
package permissions

import (
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

// Analyze compares every scanned entry's mode bits against the desired
// file and directory modes, emitting a Permissions Operation per mismatch.
// desiredFileMode and desiredDirMode are numeric modes already normalized
// by config.NormalizeMode.
func Analyze(model *scanmodel.Model, desiredFileMode, desiredDirMode uint32) []planpkg.Operation {
	var ops []planpkg.Operation

	for _, f := range model.FilesInOrder() {
		if f.Ignored || f.MarkedForDelete {
			continue
		}
		current := int(f.Stat.Mode.Perm())
		if current != int(desiredFileMode) {
			ops = append(ops, planpkg.Operation{
				Kind:        planpkg.KindPermissions,
				Path:        f.Path,
				CurrentMode: current,
				DesiredMode: int(desiredFileMode),
				Reason:      "file mode mismatch",
				Depth:       f.Depth,
			})
		}
	}
	for _, d := range model.DirsInOrder() {
		current := int(d.Stat.Mode.Perm())
		if current != int(desiredDirMode) {
			ops = append(ops, planpkg.Operation{
				Kind:        planpkg.KindPermissions,
				Path:        d.Path,
				CurrentMode: current,
				DesiredMode: int(desiredDirMode),
				Reason:      "directory mode mismatch",
				Depth:       d.Depth,
			})
		}
	}
	return ops
}
