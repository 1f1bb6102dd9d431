// Package cleanup computes the pre- and post-analyzer cleanup candidates:
// empty directories and files marked for deletion, with cascade
// suppression so a parent's move subsumes its children (§4.4).
package cleanup

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/rebase"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

// Result is the cleanup analyzer's output (§4.4).
type Result struct {
	Directories []planpkg.Operation
	Files       []planpkg.Operation
	Size        int64
}

// candidate is an internal pre-cascade item.
type candidate struct {
	path   string
	isDir  bool
	depth  int
	size   int64
	reason string
}

// Analyze computes cleanup candidates for model against scanRoot and
// recycleBinPath, tagging each Operation with kind (PreCleanup or
// PostCleanup depending on which pipeline stage calls it).
func Analyze(model *scanmodel.Model, scanRoot, recycleBinPath string, emptyThreshold int64, kind planpkg.Kind) Result {
	var candidates []candidate

	for _, d := range model.DirsInOrder() {
		if d.Path == scanRoot {
			continue
		}
		if d.TotalSize <= emptyThreshold {
			reason := "is empty"
			if d.TotalSize > 0 {
				reason = "size below threshold"
			} else if d.FileCount > 0 {
				reason = "considered empty but contains only ignored/zero-byte items"
			}
			candidates = append(candidates, candidate{path: d.Path, isDir: true, depth: d.Depth, size: d.TotalSize, reason: reason})
		}
	}
	for _, f := range model.FilesInOrder() {
		if f.MarkedForDelete {
			candidates = append(candidates, candidate{path: f.Path, isDir: false, depth: f.Depth, size: f.Stat.Size, reason: "marked for deletion"})
		}
	}

	accepted := cascade(candidates)

	var result Result
	for _, c := range accepted {
		op := planpkg.Operation{
			Kind:   kind,
			Path:   c.path,
			MoveTo: rebase.Onto(scanRoot, recycleBinPath, c.path),
			Reason: c.reason,
			Depth:  c.depth,
		}
		result.Size += c.size
		if c.isDir {
			result.Directories = append(result.Directories, op)
		} else {
			result.Files = append(result.Files, op)
		}
	}
	return result
}

// cascade implements §4.4's suppression rule: sort by increasing depth,
// drop any candidate whose parent or any further ancestor path is already
// accepted, and add a
// directory's own path to the accepted set even when it is itself
// cascaded away, so its descendants are still subsumed.
func cascade(candidates []candidate) []candidate {
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].depth < sorted[j].depth })

	accepted := make(map[string]bool)
	var out []candidate
	for _, c := range sorted {
		if hasAcceptedAncestor(accepted, filepath.Dir(c.path)) {
			accepted[c.path] = true
			continue
		}
		accepted[c.path] = true
		out = append(out, c)
	}
	return out
}

func hasAcceptedAncestor(accepted map[string]bool, dir string) bool {
	for {
		if accepted[dir] {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir || !strings.HasPrefix(dir, parent) {
			return false
		}
		dir = parent
	}
}
