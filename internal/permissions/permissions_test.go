package permissions

import (
	"os"
	"testing"

	"github.com/archivekeeper/curator/internal/scanmodel"
)

func TestMismatchedFileModeIsFlagged(t *testing.T) {
	model := scanmodel.New()
	model.AddFile(&scanmodel.FileEntry{Path: "/r/a.jpg", Stat: scanmodel.StatSnapshot{Mode: os.FileMode(0o644)}})

	ops := Analyze(model, 0o664, 0o775)
	if len(ops) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(ops))
	}
	if ops[0].CurrentMode != 0o644 || ops[0].DesiredMode != 0o664 {
		t.Fatalf("unexpected modes: %+v", ops[0])
	}
}

func TestMatchingFileModeIsNotFlagged(t *testing.T) {
	model := scanmodel.New()
	model.AddFile(&scanmodel.FileEntry{Path: "/r/a.jpg", Stat: scanmodel.StatSnapshot{Mode: os.FileMode(0o664)}})

	ops := Analyze(model, 0o664, 0o775)
	if len(ops) != 0 {
		t.Fatalf("expected no mismatches, got %d", len(ops))
	}
}

func TestIgnoredFileIsSkipped(t *testing.T) {
	model := scanmodel.New()
	model.AddFile(&scanmodel.FileEntry{Path: "/r/desktop.ini", Ignored: true, Stat: scanmodel.StatSnapshot{Mode: os.FileMode(0o777)}})

	ops := Analyze(model, 0o664, 0o775)
	if len(ops) != 0 {
		t.Fatalf("ignored file should be skipped, got %d", len(ops))
	}
}

func TestMismatchedDirModeIsFlagged(t *testing.T) {
	model := scanmodel.New()
	model.AddDir(&scanmodel.DirEntry{Path: "/r/sub", Stat: scanmodel.StatSnapshot{Mode: os.FileMode(0o755)}})

	ops := Analyze(model, 0o664, 0o775)
	if len(ops) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(ops))
	}
}
