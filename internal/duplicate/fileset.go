package duplicate

import (
	"unicode"

	"github.com/archivekeeper/curator/internal/scanmodel"
)

// Fileset is a master media file plus its sidecars within one directory
// (§4.5 Stage B step 1, see GLOSSARY "Fileset"/"Sidecar").
type Fileset struct {
	Master   *scanmodel.FileEntry
	Sidecars []*scanmodel.FileEntry
}

// Members returns the master followed by its sidecars, in that order —
// the order used for the fileset's combined hash (§4.5 step 2).
func (fs Fileset) Members() []*scanmodel.FileEntry {
	out := make([]*scanmodel.FileEntry, 0, 1+len(fs.Sidecars))
	out = append(out, fs.Master)
	out = append(out, fs.Sidecars...)
	return out
}

// detectFilesets groups files within a single directory into filesets. A
// file is a master when its extension is in masterExts; any sibling whose
// base name begins with the master's base name immediately followed by a
// non-alphanumeric boundary (or nothing) becomes a sidecar. A file used as
// a sidecar of one master is not itself considered a second master.
func detectFilesets(files []*scanmodel.FileEntry, masterExts map[string]bool) []Fileset {
	used := make(map[string]bool)
	var filesets []Fileset

	for _, candidate := range files {
		if !masterExts[candidate.Ext] {
			continue
		}
		if used[candidate.Path] {
			continue
		}
		fs := Fileset{Master: candidate}
		for _, sibling := range files {
			if sibling.Path == candidate.Path || used[sibling.Path] {
				continue
			}
			if isSidecarOf(candidate.Base, sibling) {
				fs.Sidecars = append(fs.Sidecars, sibling)
			}
		}
		used[candidate.Path] = true
		for _, s := range fs.Sidecars {
			used[s.Path] = true
		}
		filesets = append(filesets, fs)
	}
	return filesets
}

// isSidecarOf reports whether sibling's base name begins with masterBase
// immediately followed by a non-alphanumeric boundary or the end of the
// name — e.g. IMG_001.xmp and IMG_001-thumb.jpg are sidecars of IMG_001.jpg.
func isSidecarOf(masterBase string, sibling *scanmodel.FileEntry) bool {
	if sibling.Base == masterBase {
		return true
	}
	if len(sibling.Base) <= len(masterBase) || sibling.Base[:len(masterBase)] != masterBase {
		return false
	}
	boundary := rune(sibling.Base[len(masterBase)])
	return !unicode.IsLetter(boundary) && !unicode.IsDigit(boundary)
}
