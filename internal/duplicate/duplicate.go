// Package duplicate implements the two-stage group-then-hash duplicate
// search over directories and files, fileset-aware (§4.5).
package duplicate

import (
	"path/filepath"
	"sort"

	"github.com/archivekeeper/curator/internal/concurrency"
	"github.com/archivekeeper/curator/internal/hashutil"
	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/rebase"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

var log = logging.L("duplicate")

// Options configures a duplicate analysis pass.
type Options struct {
	ScanRoot          string
	RecycleBinPath    string
	HashByteLimit     int
	DupeSetExtensions []string
	Limiter           *concurrency.Limiter
}

// Analyze runs both stages and returns the Duplicate Operations, directory
// matches first. The set of directory paths claimed in Stage A
// (DUP_DIR_PATHS) stays internal: Stage B uses it to skip files already
// accounted for by a directory-level match. Candidates are hashed
// sequentially; opts.Limiter is not used.
func Analyze(model *scanmodel.Model, opts Options) []planpkg.Operation {
	dupDirPaths, dirOps := stageA(model, opts)
	fileOps := stageB(model, opts, dupDirPaths)

	ops := make([]planpkg.Operation, 0, len(dirOps)+len(fileOps))
	ops = append(ops, dirOps...)
	ops = append(ops, fileOps...)
	return ops
}

// --- Stage A: directories ---

func stageA(model *scanmodel.Model, opts Options) (map[string]bool, []planpkg.Operation) {
	dupDirPaths := make(map[string]bool)

	byShape := make(map[string][]*scanmodel.DirEntry)
	dirFiles := make(map[string][]*scanmodel.FileEntry)
	for _, f := range model.FilesInOrder() {
		dirFiles[f.Dir] = append(dirFiles[f.Dir], f)
	}

	dirs := model.DirsInOrder()
	for _, d := range dirs {
		key := hashutil.ShapeKey{
			IntrinsicSize: d.IntrinsicSize,
			TotalSize:     d.TotalSize,
			FileCount:     d.FileCount,
			LinkCount:     1,
			StatSize:      d.Stat.Size,
		}.String()
		byShape[key] = append(byShape[key], d)
	}

	// Compute recursive hashes bottom-up (deepest directories first) so a
	// parent's hash can fold in its already-computed children.
	sorted := make([]*scanmodel.DirEntry, len(dirs))
	copy(sorted, dirs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Depth > sorted[j].Depth })

	dirHash := make(map[string]hashutil.Digest)
	childDirs := make(map[string][]string)
	for _, d := range dirs {
		if d.Dir != "" {
			childDirs[d.Dir] = append(childDirs[d.Dir], d.Path)
		}
	}

	for _, d := range sorted {
		var childFiles []hashutil.ChildFile
		for _, f := range dirFiles[d.Path] {
			if f.Ignored {
				continue
			}
			h, err := hashutil.ChunkFile(f.Path, 131072)
			if err != nil {
				log.Warn("hash failure, excluding from duplicate claim", "path", f.Path, "error", err)
				continue
			}
			childFiles = append(childFiles, hashutil.ChildFile{Name: f.Name(), Hash: h})
		}
		childHashes := make(map[string]hashutil.Digest)
		for _, childPath := range childDirs[d.Path] {
			if h, ok := dirHash[childPath]; ok {
				childHashes[filepath.Base(childPath)] = h
			}
		}
		dirHash[d.Path] = hashutil.DirectoryHash(childFiles, childHashes)
	}

	var ops []planpkg.Operation
	for _, group := range byShape {
		if len(group) < 2 {
			continue
		}
		byHash := make(map[hashutil.Digest][]*scanmodel.DirEntry)
		for _, d := range group {
			byHash[dirHash[d.Path]] = append(byHash[dirHash[d.Path]], d)
		}
		for _, members := range byHash {
			if len(members) < 2 {
				continue
			}
			original := determineOriginalDir(members)
			for _, m := range members {
				dupDirPaths[m.Path] = true
			}
			for _, m := range members {
				if m.Path == original.Path {
					continue
				}
				ops = append(ops, planpkg.Operation{
					Kind:         planpkg.KindDuplicate,
					Path:         m.Path,
					MoveTo:       rebase.Onto(opts.ScanRoot, opts.RecycleBinPath, m.Path),
					OriginalPath: original.Path,
					Reason:       "duplicate directory",
					Depth:        m.Depth,
				})
			}
		}
	}
	return dupDirPaths, ops
}

func determineOriginalDir(members []*scanmodel.DirEntry) *scanmodel.DirEntry {
	aged := make([]Aged, len(members))
	byPath := make(map[string]*scanmodel.DirEntry, len(members))
	for i, m := range members {
		aged[i] = Aged{Path: m.Path, CtimeMs: m.Stat.CtimeMs, BirthtimeMs: m.Stat.BirthtimeMs}
		byPath[m.Path] = m
	}
	return byPath[DetermineOriginal(aged).Path]
}

// dupUnit is a duplicate-matching unit: either a standalone file or a
// fileset master carrying its sidecars as additional members.
type dupUnit struct {
	rep     *scanmodel.FileEntry
	members []*scanmodel.FileEntry
	isSet   bool
}

// --- Stage B: files ---

func stageB(model *scanmodel.Model, opts Options, dupDirPaths map[string]bool) []planpkg.Operation {
	masterExts := make(map[string]bool)
	for _, e := range opts.DupeSetExtensions {
		masterExts["."+trimLeadingDot(e)] = true
	}

	dirFiles := make(map[string][]*scanmodel.FileEntry)
	for _, f := range model.FilesInOrder() {
		if f.Ignored || f.MarkedForDelete || dupDirPaths[f.Dir] {
			continue
		}
		dirFiles[f.Dir] = append(dirFiles[f.Dir], f)
	}

	var units []dupUnit
	for _, files := range dirFiles {
		filesets := detectFilesets(files, masterExts)
		inSet := make(map[string]bool)
		for _, fs := range filesets {
			members := fs.Members()
			if len(members) > 1 {
				units = append(units, dupUnit{rep: fs.Master, members: members, isSet: true})
				inSet[fs.Master.Path] = true
				for _, s := range fs.Sidecars {
					inSet[s.Path] = true
				}
			}
		}
		for _, f := range files {
			if inSet[f.Path] {
				continue
			}
			units = append(units, dupUnit{rep: f, members: []*scanmodel.FileEntry{f}, isSet: false})
		}
	}

	// Group by exact byte size (of the representative file).
	bySize := make(map[int64][]int)
	for i, u := range units {
		bySize[u.rep.Stat.Size] = append(bySize[u.rep.Stat.Size], i)
	}

	hashes := make(map[string]hashutil.Digest) // member path -> chunk hash
	matchKey := make(map[int]hashutil.Digest)  // unit index -> grouping key

	for _, idxs := range bySize {
		if len(idxs) < 2 {
			continue
		}
		for _, idx := range idxs {
			u := units[idx]
			var memberHashes []hashutil.Digest
			ok := true
			for _, m := range u.members {
				h, found := hashes[m.Path]
				if !found {
					var err error
					h, err = hashutil.ChunkFile(m.Path, opts.HashByteLimit)
					if err != nil {
						log.Warn("hash failure, excluding from duplicate claim", "path", m.Path, "error", err)
						ok = false
						break
					}
					hashes[m.Path] = h
				}
				memberHashes = append(memberHashes, h)
			}
			if !ok {
				continue
			}
			if u.isSet {
				matchKey[idx] = hashutil.FilesetHash(memberHashes)
			} else {
				matchKey[idx] = memberHashes[0]
			}
		}
	}

	byKey := make(map[hashutil.Digest][]int)
	for idx, key := range matchKey {
		byKey[key] = append(byKey[key], idx)
	}

	var ops []planpkg.Operation
	emitted := make(map[string]bool)

	for _, idxs := range byKey {
		if len(idxs) < 2 {
			continue
		}
		originalIdx := determineOriginalUnit(units, idxs)
		original := units[originalIdx]
		for _, idx := range idxs {
			if idx == originalIdx {
				continue
			}
			dup := units[idx]
			if emitted[dup.rep.Path] {
				continue
			}
			emitted[dup.rep.Path] = true

			op := planpkg.Operation{
				Kind:         planpkg.KindDuplicate,
				Path:         dup.rep.Path,
				MoveTo:       rebase.Onto(opts.ScanRoot, opts.RecycleBinPath, dup.rep.Path),
				OriginalPath: original.rep.Path,
				Reason:       "duplicate file",
				Depth:        dup.rep.Depth,
			}
			for _, s := range dup.members[1:] {
				op.SidecarFiles = append(op.SidecarFiles, s.Name())
				emitted[s.Path] = true
			}
			ops = append(ops, op)
		}
	}
	return ops
}

func determineOriginalUnit(units []dupUnit, idxs []int) int {
	aged := make([]Aged, len(idxs))
	for i, idx := range idxs {
		u := units[idx]
		aged[i] = Aged{Path: u.rep.Path, CtimeMs: u.rep.Stat.CtimeMs, BirthtimeMs: u.rep.Stat.BirthtimeMs}
	}
	best := DetermineOriginal(aged)

	chosen := idxs[0]
	for _, idx := range idxs {
		if units[idx].rep.Path == best.Path {
			chosen = idx
			break
		}
	}
	// Promote a fileset's representative over a lone matching file, since a
	// fileset carries sidecars worth preserving (§4.5 step 3).
	if !units[chosen].isSet {
		for _, idx := range idxs {
			if units[idx].isSet {
				return idx
			}
		}
	}
	return chosen
}

func trimLeadingDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
