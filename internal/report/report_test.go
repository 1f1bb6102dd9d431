package report

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/archivekeeper/curator/internal/planpkg"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func TestNewCreatesReportDirectoryAndFile(t *testing.T) {
	w := newTestWriter(t)
	defer w.Close()

	if _, err := os.Stat(w.Path()); err != nil {
		t.Fatalf("expected report file to exist: %v", err)
	}
	if w.RunID() == "" {
		t.Fatal("expected a non-empty run ID")
	}
}

func TestOperationWritesJSONLEntry(t *testing.T) {
	w := newTestWriter(t)
	w.Operation("/r", planpkg.Operation{Kind: planpkg.KindDuplicate, Path: "/r/a.jpg", MoveTo: "/r/#recycle/a.jpg", Reason: "duplicate"}, true, nil)
	w.Close()

	data, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var entry Entry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.EventType != EventOperation {
		t.Fatalf("eventType = %q, want %q", entry.EventType, EventOperation)
	}
	if entry.PrevHash != "genesis" {
		t.Fatalf("prevHash = %q, want genesis", entry.PrevHash)
	}
	if entry.EntryHash == "" {
		t.Fatal("entryHash is empty")
	}
}

func TestFailedOperationRecordsSkipEvent(t *testing.T) {
	w := newTestWriter(t)
	w.Operation("/r", planpkg.Operation{Kind: planpkg.KindOrphan, Path: "/r/solo.xml"}, false, errors.New("rename failed"))
	w.Close()

	data, _ := os.ReadFile(w.Path())
	var entry Entry
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.EventType != EventOperationSkip {
		t.Fatalf("eventType = %q, want %q", entry.EventType, EventOperationSkip)
	}
}

func TestHashChainLinksAcrossEntries(t *testing.T) {
	w := newTestWriter(t)
	w.RunStarted([]string{"/r"})
	w.Operation("/r", planpkg.Operation{Kind: planpkg.KindDuplicate, Path: "/r/a.jpg"}, true, nil)
	w.RunFinished(1, 0)
	w.Close()

	data, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var prev Entry
	for i, line := range lines {
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("unmarshal entry %d: %v", i, err)
		}
		if i == 0 {
			if entry.PrevHash != "genesis" {
				t.Fatalf("entry 0 prevHash = %q, want genesis", entry.PrevHash)
			}
		} else if entry.PrevHash != prev.EntryHash {
			t.Fatalf("entry %d prevHash = %q, want %q", i, entry.PrevHash, prev.EntryHash)
		}
		prev = entry
	}
}

func TestNilWriterOperationDoesNotPanic(t *testing.T) {
	var w *Writer
	w.Operation("/r", planpkg.Operation{Kind: planpkg.KindDuplicate, Path: "/r/a.jpg"}, true, nil)
}

func TestNilWriterCloseDoesNotPanic(t *testing.T) {
	var w *Writer
	if err := w.Close(); err != nil {
		t.Fatalf("nil Close() returned error: %v", err)
	}
}
