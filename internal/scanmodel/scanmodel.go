// Package scanmodel defines the Scan Model: the FileEntry/DirEntry records
// produced by a scan and the aggregated per-directory statistics every
// analyzer reads.
package scanmodel

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StatSnapshot captures the POSIX stat fields analyzers need. CtimeMs and
// BirthtimeMs are populated by the platform-specific statSnapshot in
// stat_linux.go / stat_darwin.go / stat_unix.go / stat_windows.go; on
// platforms with no birth time, BirthtimeMs mirrors CtimeMs.
type StatSnapshot struct {
	Size        int64
	Mode        os.FileMode
	Uid         uint32
	Gid         uint32
	ModTimeMs   int64
	CtimeMs     int64
	BirthtimeMs int64
}

// FileEntry is a single file discovered by the scanner (§3).
type FileEntry struct {
	Path            string
	Dir             string
	Base            string // base name without extension
	Ext             string // lower-cased, including the leading dot
	Depth           int
	Stat            StatSnapshot
	Ignored         bool
	MarkedForDelete bool
}

// Name returns the file's on-disk base name including extension.
func (f FileEntry) Name() string {
	return filepath.Base(f.Path)
}

// DirEntry is a single directory discovered by the scanner (§3), with
// aggregates finalized once the scan's post-pass completes.
type DirEntry struct {
	Path  string
	Dir   string
	Depth int
	Stat  StatSnapshot

	IntrinsicSize int64
	TotalSize     int64
	FileCount     int
	DirCount      int
}

// Counters tallies scan-wide totals (§3).
type Counters struct {
	Scanned      int64
	Ignored      int64
	TotalBytes   int64
	ErrorsLogged int64
}

// Model is the Scan Model: two insertion-ordered mappings keyed by
// absolute path, plus scan-wide counters.
type Model struct {
	Files       map[string]*FileEntry
	Directories map[string]*DirEntry
	// order preserves insertion order for callers that need deterministic
	// iteration (cascade sorts re-derive their own order from Depth, but
	// tests and reporting want stability).
	fileOrder []string
	dirOrder  []string
	Counters  Counters
}

// New returns an empty Scan Model.
func New() *Model {
	return &Model{
		Files:       make(map[string]*FileEntry),
		Directories: make(map[string]*DirEntry),
	}
}

// AddFile inserts or replaces a FileEntry, preserving first-insertion order.
func (m *Model) AddFile(f *FileEntry) {
	if _, exists := m.Files[f.Path]; !exists {
		m.fileOrder = append(m.fileOrder, f.Path)
	}
	m.Files[f.Path] = f
}

// AddDir inserts or replaces a DirEntry, preserving first-insertion order.
func (m *Model) AddDir(d *DirEntry) {
	if _, exists := m.Directories[d.Path]; !exists {
		m.dirOrder = append(m.dirOrder, d.Path)
	}
	m.Directories[d.Path] = d
}

// FilesInOrder returns file entries in insertion order.
func (m *Model) FilesInOrder() []*FileEntry {
	out := make([]*FileEntry, 0, len(m.fileOrder))
	for _, p := range m.fileOrder {
		out = append(out, m.Files[p])
	}
	return out
}

// DirsInOrder returns directory entries in insertion order.
func (m *Model) DirsInOrder() []*DirEntry {
	out := make([]*DirEntry, 0, len(m.dirOrder))
	for _, p := range m.dirOrder {
		out = append(out, m.Directories[p])
	}
	return out
}

// SplitName splits a file's base name into (stem, extension), extension
// lower-cased and including the leading dot, matching §3's FileEntry shape.
func SplitName(name string) (stem, ext string) {
	ext = strings.ToLower(filepath.Ext(name))
	stem = strings.TrimSuffix(name, filepath.Ext(name))
	return stem, ext
}

// NewStatSnapshot builds a StatSnapshot from a path, delegating ctime and
// birthtime extraction to the platform-specific implementation.
func NewStatSnapshot(path string, info os.FileInfo) StatSnapshot {
	snap := StatSnapshot{
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTimeMs: info.ModTime().UnixMilli(),
	}
	platformStat(path, info, &snap)
	return snap
}

// ModTime is a convenience accessor mirroring the pre-extraction info.ModTime().
func (s StatSnapshot) ModTime() time.Time {
	return time.UnixMilli(s.ModTimeMs)
}
