// Package orphan identifies lone files in their directory (§4.6).
package orphan

import (
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/rebase"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

// Analyze returns an Orphan Operation for every non-ignored file whose
// immediate parent directory contains exactly one file.
func Analyze(model *scanmodel.Model, scanRoot, recycleBinPath string) []planpkg.Operation {
	var ops []planpkg.Operation
	for _, f := range model.FilesInOrder() {
		if f.Ignored || f.MarkedForDelete {
			continue
		}
		dir, ok := model.Directories[f.Dir]
		if !ok || dir.FileCount != 1 {
			continue
		}
		ops = append(ops, planpkg.Operation{
			Kind:   planpkg.KindOrphan,
			Path:   f.Path,
			MoveTo: rebase.Onto(scanRoot, recycleBinPath, f.Path),
			Reason: "lone file in directory",
			Depth:  f.Depth,
		})
	}
	return ops
}
