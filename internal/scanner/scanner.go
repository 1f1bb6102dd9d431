// Package scanner performs the breadth-first traversal that produces the
// Scan Model every analyzer consumes (§4.1).
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/pathmatch"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

var log = logging.L("scanner")

// Options configures a scan pass.
type Options struct {
	ScanRoot          string
	RecycleBinPath    string
	IgnoreDirectories *pathmatch.Matcher
	IgnoreFiles       *pathmatch.Matcher
	RemoveFiles       *pathmatch.Matcher

	// ShowProgress renders a live entry counter on stderr while the BFS
	// runs; off by default so tests and the dry-run `scan` command stay quiet.
	ShowProgress bool
}

type queueItem struct {
	path  string
	depth int
}

// Scan performs the BFS traversal described in §4.1 and returns the
// finalized Scan Model. Errors stat'ing individual entries are logged and
// the entry is skipped; the overall scan never fails outright.
func Scan(opts Options) *scanmodel.Model {
	model := scanmodel.New()
	logFreeSpace(opts.ScanRoot)

	rootInfo, err := os.Lstat(opts.ScanRoot)
	if err != nil {
		log.Error("cannot stat scan root", "path", opts.ScanRoot, "error", err)
		return model
	}
	rootDevice := deviceID(rootInfo)

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(-1, "scanning "+opts.ScanRoot)
		defer bar.Finish()
	}

	model.AddDir(&scanmodel.DirEntry{
		Path:  opts.ScanRoot,
		Dir:   filepath.Dir(opts.ScanRoot),
		Depth: 0,
		Stat:  scanmodel.NewStatSnapshot(opts.ScanRoot, rootInfo),
	})

	queue := []queueItem{{path: opts.ScanRoot, depth: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(item.path)
		if err != nil {
			log.Warn("cannot read directory", "path", item.path, "error", err)
			model.Counters.ErrorsLogged++
			continue
		}

		for _, entry := range entries {
			childPath := filepath.Join(item.path, entry.Name())
			info, err := entry.Info()
			if err != nil {
				log.Warn("cannot stat entry", "path", childPath, "error", err)
				model.Counters.ErrorsLogged++
				continue
			}

			if bar != nil {
				_ = bar.Add(1)
			}

			if info.IsDir() {
				handleDir(model, opts, childPath, item.depth+1, info, rootDevice, &queue)
				continue
			}
			handleFile(model, opts, childPath, item.path, item.depth+1, info)
		}
	}

	return model
}

func handleDir(model *scanmodel.Model, opts Options, path string, depth int, info os.FileInfo, rootDevice uint64, queue *[]queueItem) {
	name := filepath.Base(path)

	if isUnderRecycleBin(opts.RecycleBinPath, path) {
		return
	}
	if opts.IgnoreDirectories.Match(name) {
		return
	}
	if deviceID(info) != rootDevice {
		log.Warn("refusing to cross filesystem device", "path", path)
		return
	}

	model.AddDir(&scanmodel.DirEntry{
		Path:  path,
		Dir:   filepath.Dir(path),
		Depth: depth,
		Stat:  scanmodel.NewStatSnapshot(path, info),
	})
	ensureAncestors(model, opts.ScanRoot, path)
	bumpParentDirCount(model, path)

	*queue = append(*queue, queueItem{path: path, depth: depth})
}

func handleFile(model *scanmodel.Model, opts Options, path, parentDir string, depth int, info os.FileInfo) {
	name := filepath.Base(path)
	stem, ext := scanmodel.SplitName(name)

	f := &scanmodel.FileEntry{
		Path:  path,
		Dir:   parentDir,
		Base:  stem,
		Ext:   ext,
		Depth: depth,
		Stat:  scanmodel.NewStatSnapshot(path, info),
	}

	if opts.RemoveFiles.Match(name) {
		f.MarkedForDelete = true
	} else if opts.IgnoreFiles.Match(name) {
		f.Ignored = true
	}

	model.AddFile(f)
	ensureAncestors(model, opts.ScanRoot, parentDir)
	if parent, ok := model.Directories[parentDir]; ok {
		parent.FileCount++
	}

	model.Counters.Scanned++
	if f.Ignored {
		model.Counters.Ignored++
	} else {
		model.Counters.TotalBytes += f.Stat.Size
		bumpAggregatesForFile(model, f)
	}
}

// ensureAncestors guarantees every directory on path's ancestor chain up to
// scanRoot is present in the model, per §3's invariant.
func ensureAncestors(model *scanmodel.Model, scanRoot, dir string) {
	for {
		if _, ok := model.Directories[dir]; ok {
			return
		}
		info, err := os.Lstat(dir)
		if err != nil {
			return
		}
		model.AddDir(&scanmodel.DirEntry{
			Path:  dir,
			Dir:   filepath.Dir(dir),
			Depth: depthBelow(scanRoot, dir),
			Stat:  scanmodel.NewStatSnapshot(dir, info),
		})
		if dir == scanRoot {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// bumpAggregatesForFile updates intrinsicSize on the immediate parent and
// totalSize up the whole ancestor chain (§3's recursive definition).
func bumpAggregatesForFile(model *scanmodel.Model, f *scanmodel.FileEntry) {
	if parent, ok := model.Directories[f.Dir]; ok {
		parent.IntrinsicSize += f.Stat.Size
	}
	dir := f.Dir
	for dir != "" {
		d, ok := model.Directories[dir]
		if !ok {
			return
		}
		d.TotalSize += f.Stat.Size
		if d.Dir == dir {
			return
		}
		dir = d.Dir
	}
}

func bumpParentDirCount(model *scanmodel.Model, childPath string) {
	parent, ok := model.Directories[filepath.Dir(childPath)]
	if ok {
		parent.DirCount++
	}
}

func isUnderRecycleBin(recycleBinPath, path string) bool {
	if recycleBinPath == "" {
		return false
	}
	if path == recycleBinPath {
		return true
	}
	rel, err := filepath.Rel(recycleBinPath, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func depthBelow(scanRoot, dir string) int {
	rel, err := filepath.Rel(scanRoot, dir)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func logFreeSpace(root string) {
	usage, err := disk.Usage(root)
	if err != nil {
		log.Debug("could not read disk usage", "path", root, "error", err)
		return
	}
	log.Info("scan starting", "path", root, "freeBytes", usage.Free, "totalBytes", usage.Total)
}
