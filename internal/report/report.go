// Package report writes the tamper-evident, hash-chained JSONL run report
// every orchestrator pass leaves behind under the recycle bin (a supplement
// over the core contract's "no persisted state": a record of what happened,
// not state the next run depends on).
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/planpkg"
)

var log = logging.L("report")

// Entry types recorded in a run report.
const (
	EventRunStarted   = "run_started"
	EventOperation     = "operation"
	EventOperationSkip = "operation_skipped"
	EventRunFinished  = "run_finished"
)

// Entry is a single hash-chained run report record.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	EventType string         `json:"eventType"`
	Root      string         `json:"root,omitempty"`
	Kind      planpkg.Kind   `json:"kind,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	PrevHash  string         `json:"prevHash"`
	EntryHash string         `json:"entryHash"`
}

// Writer appends hash-chained entries to a single run's JSONL file.
type Writer struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	prevHash string
	runID    string
}

// New creates the report directory under recycleBinPath and opens a fresh
// JSONL file named after a freshly generated run ID.
func New(recycleBinPath string) (*Writer, error) {
	runID := uuid.NewString()
	dir := filepath.Join(recycleBinPath, ".curator-report")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create report directory: %w", err)
	}

	path := filepath.Join(dir, runID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: open run report: %w", err)
	}

	w := &Writer{file: f, path: path, prevHash: "genesis", runID: runID}
	log.Info("run report opened", "path", path, "runId", runID)
	return w, nil
}

// RunID returns the identifier embedded in this report's file name.
func (w *Writer) RunID() string { return w.runID }

// Path returns the report file's absolute path.
func (w *Writer) Path() string { return w.path }

// Operation records a single executed (or skipped) plan operation.
func (w *Writer) Operation(root string, op planpkg.Operation, executed bool, execErr error) {
	eventType := EventOperation
	if !executed {
		eventType = EventOperationSkip
	}
	details := map[string]any{
		"path":   op.Path,
		"reason": op.Reason,
	}
	if op.MoveTo != "" {
		details["moveTo"] = op.MoveTo
	}
	if op.OriginalPath != "" {
		details["originalPath"] = op.OriginalPath
	}
	if execErr != nil {
		details["error"] = execErr.Error()
	}
	w.write(eventType, root, op.Kind, details)
}

// RunStarted records the start of an orchestrator pass over a set of roots.
func (w *Writer) RunStarted(roots []string) {
	w.write(EventRunStarted, "", "", map[string]any{"roots": roots})
}

// RunFinished records the end of an orchestrator pass.
func (w *Writer) RunFinished(opsExecuted, opsFailed int) {
	w.write(EventRunFinished, "", "", map[string]any{
		"operationsExecuted": opsExecuted,
		"operationsFailed":   opsFailed,
	})
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *Writer) write(eventType, root string, kind planpkg.Kind, details map[string]any) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		EventType: eventType,
		Root:      root,
		Kind:      kind,
		Details:   details,
		PrevHash:  w.prevHash,
	}
	hash, err := computeHash(entry)
	if err != nil {
		log.Error("failed to compute report entry hash", "error", err)
		return
	}
	entry.EntryHash = hash

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error("failed to marshal report entry", "error", err)
		return
	}
	data = append(data, '\n')

	if _, err := w.file.Write(data); err != nil {
		log.Error("failed to write report entry", "error", err)
		return
	}
	w.prevHash = entry.EntryHash
}

// computeHash chains an entry to its predecessor via length-prefixed field
// concatenation, preventing delimiter collisions across fields.
func computeHash(entry Entry) (string, error) {
	h := sha256.New()
	for _, field := range []string{entry.Timestamp, entry.EventType, entry.Root, string(entry.Kind), entry.PrevHash} {
		fmt.Fprintf(h, "%d:%s", len(field), field)
	}
	if entry.Details != nil {
		detailBytes, err := json.Marshal(entry.Details)
		if err != nil {
			return "", fmt.Errorf("marshal details for hash: %w", err)
		}
		fmt.Fprintf(h, "%d:", len(detailBytes))
		h.Write(detailBytes)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
