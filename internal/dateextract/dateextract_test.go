package dateextract

import (
	"testing"
	"time"

	"github.com/archivekeeper/curator/internal/scanmodel"
)

var threshold = time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFromPatternsYMD(t *testing.T) {
	r, ok := fromPatterns("/r/in/2019-07-04_trip", "path")
	if !ok {
		t.Fatal("expected a match")
	}
	want := time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Fatalf("got %v, want %v", r.Date, want)
	}
}

func TestFromPatternsYMDNoSeparators(t *testing.T) {
	r, ok := fromPatterns("IMG_20190704_120000.jpg", "filename")
	if !ok {
		t.Fatal("expected a match")
	}
	want := time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Fatalf("got %v, want %v", r.Date, want)
	}
}

func TestFromPatternsRejectsInvalidMonth(t *testing.T) {
	_, ok := fromPatterns("2019-13-04", "path")
	if ok {
		t.Fatal("month 13 should be rejected")
	}
}

func TestFromPatternsRejectsOutOfRangeYear(t *testing.T) {
	_, ok := fromPatterns("1850-01-01", "path")
	if ok {
		t.Fatal("year 1850 should be rejected (below 1900)")
	}
}

func TestFromPatternsEpoch(t *testing.T) {
	r, ok := fromPatterns("export_1562198400_final", "filename")
	if !ok {
		t.Fatal("expected epoch match")
	}
	if r.Source != "filename (epoch)" {
		t.Fatalf("source = %q, want filename (epoch)", r.Source)
	}
}

func TestEarliestAfterFiltersThreshold(t *testing.T) {
	candidates := []Result{
		{Date: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Source: "too-old"},
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Source: "path"},
		{Date: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), Source: "filename"},
	}
	best, ok := earliestAfter(candidates, threshold)
	if !ok {
		t.Fatal("expected a surviving candidate")
	}
	if best.Source != "filename" {
		t.Fatalf("expected earliest surviving candidate (filename), got %s", best.Source)
	}
}

func TestEarliestAfterNoneSurviveThreshold(t *testing.T) {
	candidates := []Result{{Date: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), Source: "path"}}
	_, ok := earliestAfter(candidates, threshold)
	if ok {
		t.Fatal("expected no surviving candidate")
	}
}

func TestExtractFallsBackToStatTimestamps(t *testing.T) {
	f := &scanmodel.FileEntry{
		Path: "/r/notes.txt",
		Dir:  "/r",
		Ext:  ".txt",
		Stat: scanmodel.StatSnapshot{
			ModTimeMs:   time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli(),
			CtimeMs:     time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli(),
			BirthtimeMs: time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}
	result, ok := Extract(f, threshold)
	if !ok {
		t.Fatal("expected a fallback stat-based result")
	}
	if result.Source != "timestamps (mtime)" && result.Source != "timestamps (ctime)" && result.Source != "timestamps (birthtime)" {
		t.Fatalf("unexpected source: %s", result.Source)
	}
}

func TestExtractPathPatternBeatsStatTimestamp(t *testing.T) {
	f := &scanmodel.FileEntry{
		Path: "/r/2010-05-06/notes.txt",
		Dir:  "/r/2010-05-06",
		Ext:  ".txt",
		Stat: scanmodel.StatSnapshot{
			ModTimeMs: time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}
	result, ok := Extract(f, threshold)
	if !ok {
		t.Fatal("expected a result")
	}
	if result.Source != "path" {
		t.Fatalf("expected path-derived date to win, got source=%s date=%v", result.Source, result.Date)
	}
}
