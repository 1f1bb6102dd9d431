package reorganize

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/archivekeeper/curator/internal/scanmodel"
)

var threshold = time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)

func TestReorganizeMovesByExtractedDate(t *testing.T) {
	model := scanmodel.New()
	f := &scanmodel.FileEntry{
		Path: "/r/in/pic.jpg",
		Dir:  "/r/in",
		Ext:  ".jpg",
		Base: "pic",
		Stat: scanmodel.StatSnapshot{ModTimeMs: time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC).UnixMilli()},
	}
	model.AddFile(f)

	ops := Analyze(context.Background(), model, Options{
		RelativePath:  "/r",
		Template:      "/{year}/{month}/",
		DateThreshold: threshold,
		Concurrency:   5,
	})

	if len(ops) != 1 {
		t.Fatalf("expected 1 reorganize op, got %d", len(ops))
	}
	// "in" is not embedded in "pic.jpg", so the source leaf is appended.
	want := filepath.Join("/r", "2019", "07", "pic_in.jpg")
	if ops[0].MoveTo != want {
		t.Fatalf("MoveTo = %q, want %q", ops[0].MoveTo, want)
	}
}

func TestReorganizeIsIdempotentWhenAlreadyInPlace(t *testing.T) {
	model := scanmodel.New()
	f := &scanmodel.FileEntry{
		Path: "/r/2019/07/pic.jpg",
		Dir:  "/r/2019/07",
		Ext:  ".jpg",
		Base: "pic",
		Stat: scanmodel.StatSnapshot{ModTimeMs: time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC).UnixMilli()},
	}
	model.AddFile(f)

	ops := Analyze(context.Background(), model, Options{
		RelativePath:  "/r",
		Template:      "/{year}/{month}/",
		DateThreshold: threshold,
		Concurrency:   5,
	})
	if len(ops) != 0 {
		t.Fatalf("expected empty plan for an already-reorganized file, got %+v", ops)
	}
}

func TestReorganizeSkipsFileWithNoExtractableDate(t *testing.T) {
	model := scanmodel.New()
	f := &scanmodel.FileEntry{
		Path: "/r/in/notes.txt",
		Dir:  "/r/in",
		Ext:  ".txt",
		Base: "notes",
		Stat: scanmodel.StatSnapshot{}, // zero time, before threshold
	}
	model.AddFile(f)

	ops := Analyze(context.Background(), model, Options{
		RelativePath:  "/r",
		Template:      "/{year}/{month}/",
		DateThreshold: threshold,
		Concurrency:   5,
	})
	if len(ops) != 0 {
		t.Fatalf("expected no op when no date survives the threshold, got %+v", ops)
	}
}

func TestTargetFileNameAppendsLeafWhenNotEmbedded(t *testing.T) {
	f := &scanmodel.FileEntry{Path: "/r/vacation/001.jpg", Dir: "/r/vacation", Base: "001", Ext: ".jpg"}
	got := targetFileName(f)
	if got != "001_vacation.jpg" {
		t.Fatalf("targetFileName() = %q, want 001_vacation.jpg", got)
	}
}

func TestTargetFileNameLeavesNameWhenLeafAlreadyEmbedded(t *testing.T) {
	f := &scanmodel.FileEntry{Path: "/r/vacation/vacation_001.jpg", Dir: "/r/vacation", Base: "vacation_001", Ext: ".jpg"}
	got := targetFileName(f)
	if got != "vacation_001.jpg" {
		t.Fatalf("targetFileName() = %q, want vacation_001.jpg", got)
	}
}

func TestSubstituteTemplateZeroPadsMonthAndDay(t *testing.T) {
	got := substituteTemplate("/{year}/{month}/{day}/", time.Date(2019, 3, 4, 0, 0, 0, 0, time.UTC))
	if got != "/2019/03/04/" {
		t.Fatalf("substituteTemplate() = %q", got)
	}
}
