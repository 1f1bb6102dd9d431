// Package dateextract produces the earliest plausible capture date for a
// file, consulting EXIF metadata, path and filename date patterns, and
// finally stat timestamps (§4.3).
package dateextract

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/archivekeeper/curator/internal/scanmodel"
)

// exifByteLimit is the amount of a file EXIF extraction reads before giving
// up; most DateTimeOriginal tags live in the first few KiB of headers.
const exifByteLimit = 64 * 1024

// exifExtensions is the predefined set of image/RAW formats EXIF extraction
// is attempted against (§4.3 step 1).
var exifExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
	".heic": true, ".heif": true, ".cr2": true, ".cr3": true,
	".nef": true, ".arw": true, ".dng": true, ".raf": true,
	".rw2": true, ".orf": true,
}

// Result is the extracted date plus the source tag it came from.
type Result struct {
	Date   time.Time
	Source string
}

var (
	// YYYY(-?)MM(-?)DD, optional separators.
	ymdPattern = regexp.MustCompile(`(\d{4})(-?)(\d{2})(-?)(\d{2})`)
	// DD(-?)MM(-?)YYYY, optional separators.
	dmyPattern = regexp.MustCompile(`(\d{2})(-?)(\d{2})(-?)(\d{4})`)
	// standalone 10-digit epoch, not immediately adjacent to other digits.
	epochPattern = regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`)
)

// Extract implements §4.3's candidate pipeline: EXIF, then path/filename
// patterns, then stat timestamps as a last resort, filtered against
// threshold and returning the earliest surviving candidate.
func Extract(f *scanmodel.FileEntry, threshold time.Time) (Result, bool) {
	var candidates []Result

	if c, ok := fromEXIF(f.Path, f.Ext); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fromPatterns(f.Dir, "path"); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fromPatterns(f.Name(), "filename"); ok {
		candidates = append(candidates, c)
	}

	if best, ok := earliestAfter(candidates, threshold); ok {
		return best, true
	}

	// Last resort: stat timestamps. mtime is primary; ctime/birthtime are
	// also considered since a copy can leave mtime stale while the
	// filesystem's own times still carry useful ordering information.
	var statCandidates []Result
	statCandidates = append(statCandidates, Result{Date: time.UnixMilli(f.Stat.ModTimeMs), Source: "timestamps (mtime)"})
	statCandidates = append(statCandidates, Result{Date: time.UnixMilli(f.Stat.CtimeMs), Source: "timestamps (ctime)"})
	statCandidates = append(statCandidates, Result{Date: time.UnixMilli(f.Stat.BirthtimeMs), Source: "timestamps (birthtime)"})

	return earliestAfter(statCandidates, threshold)
}

func fromEXIF(path, ext string) (Result, bool) {
	if !exifExtensions[ext] {
		return Result{}, false
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, false
	}
	defer f.Close()

	limited := io.LimitReader(f, exifByteLimit)
	data, err := io.ReadAll(limited)
	if err != nil {
		return Result{}, false
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, false
	}
	dt, err := x.DateTime()
	if err != nil {
		return Result{}, false
	}
	return Result{Date: dt, Source: "exif"}, true
}

func fromPatterns(s, sourceTag string) (Result, bool) {
	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		if d, ok := validDate(m[1], m[3], m[5]); ok {
			return Result{Date: d, Source: sourceTag}, true
		}
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		if d, ok := validDate(m[5], m[3], m[1]); ok {
			return Result{Date: d, Source: sourceTag}, true
		}
	}
	if m := epochPattern.FindStringSubmatch(s); m != nil {
		if epoch, err := strconv.ParseInt(m[1], 10, 64); err == nil && epoch >= 0 {
			return Result{Date: time.Unix(epoch, 0).UTC(), Source: sourceTag + " (epoch)"}, true
		}
	}
	return Result{}, false
}

func validDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, err1 := strconv.Atoi(yearStr)
	month, err2 := strconv.Atoi(monthStr)
	day, err3 := strconv.Atoi(dayStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 1900 || year > 2099 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func earliestAfter(candidates []Result, threshold time.Time) (Result, bool) {
	var best Result
	found := false
	for _, c := range candidates {
		if !c.Date.After(threshold) {
			continue
		}
		if !found || c.Date.Before(best.Date) {
			best = c
			found = true
		}
	}
	return best, found
}
