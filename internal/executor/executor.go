// Package executor applies a staged Plan to disk under operator
// confirmation (§6). It owns the yes/yes-to-all/no/cancel/show state
// machine; the actual I/O is delegated to internal/moveio and to os's
// chmod/chown.
package executor

import (
	"fmt"
	"os"
	"sort"

	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/moveio"
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/report"
)

var log = logging.L("executor")

// Decision is the operator's answer to a class-level or per-item prompt.
type Decision int

const (
	DecisionNo Decision = iota
	DecisionYes
	DecisionYesToAll
	DecisionCancel
	DecisionShow
)

// Confirmer asks the operator for a decision at the class level (once per
// operation kind) and at the item level (once per operation, only reached
// when the class decision was DecisionYes).
type Confirmer interface {
	ConfirmClass(kind planpkg.Kind, ops []planpkg.Operation) (Decision, error)
	ConfirmItem(op planpkg.Operation) (Decision, error)
	Show(ops []planpkg.Operation)
}

// Result tallies what happened across an entire Run.
type Result struct {
	Executed  int
	Failed    int
	Skipped   int
	Cancelled bool
}

// Run walks plan.Kinds() in order, confirming and applying each kind's
// operations. rep may be nil (no report written). root is recorded on
// report entries only, it does not affect execution.
func Run(plan *planpkg.Plan, confirmer Confirmer, rep *report.Writer, root string) Result {
	var result Result

	for _, kind := range plan.Kinds() {
		ops := plan.For(kind)
		if len(ops) == 0 {
			continue
		}
		ops = deepestFirst(ops)

		cancelled := runClass(kind, ops, confirmer, rep, root, &result)
		if cancelled {
			result.Cancelled = true
			break
		}
	}
	return result
}

// deepestFirst returns ops sorted by descending Depth so a directory's
// children are moved before the directory itself (§5). Depth is stable
// sorted so operations at the same depth keep their analyzer-insertion
// order.
func deepestFirst(ops []planpkg.Operation) []planpkg.Operation {
	sorted := make([]planpkg.Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Depth > sorted[j].Depth
	})
	return sorted
}

func runClass(kind planpkg.Kind, ops []planpkg.Operation, confirmer Confirmer, rep *report.Writer, root string, result *Result) (cancelled bool) {
	for {
		decision, err := confirmer.ConfirmClass(kind, ops)
		if err != nil {
			log.Error("class confirmation failed", "kind", kind, "error", err)
			result.Skipped += len(ops)
			return false
		}

		switch decision {
		case DecisionShow:
			confirmer.Show(ops)
			continue
		case DecisionCancel:
			for _, op := range ops {
				rep.Operation(root, op, false, nil)
			}
			result.Skipped += len(ops)
			return true
		case DecisionNo:
			for _, op := range ops {
				rep.Operation(root, op, false, nil)
			}
			result.Skipped += len(ops)
			return false
		case DecisionYesToAll:
			applyAll(ops, rep, root, result)
			return false
		case DecisionYes:
			return applyPerItem(ops, confirmer, rep, root, result)
		default:
			result.Skipped += len(ops)
			return false
		}
	}
}

func applyPerItem(ops []planpkg.Operation, confirmer Confirmer, rep *report.Writer, root string, result *Result) (cancelled bool) {
	yesToAllRest := false
	for i, op := range ops {
		if !yesToAllRest {
			decision, err := confirmer.ConfirmItem(op)
			if err != nil {
				log.Error("item confirmation failed", "path", op.Path, "error", err)
				result.Skipped++
				continue
			}
			switch decision {
			case DecisionShow:
				confirmer.Show([]planpkg.Operation{op})
				// Re-show does not advance; re-prompt the same item.
				decision, err = confirmer.ConfirmItem(op)
				if err != nil || decision == DecisionNo {
					result.Skipped++
					continue
				}
			}
			switch decision {
			case DecisionCancel:
				for _, remaining := range ops[i:] {
					rep.Operation(root, remaining, false, nil)
				}
				result.Skipped += len(ops) - i
				return true
			case DecisionNo:
				rep.Operation(root, op, false, nil)
				result.Skipped++
				continue
			case DecisionYesToAll:
				yesToAllRest = true
			case DecisionYes:
				// fall through to apply below
			default:
				result.Skipped++
				continue
			}
		}
		applyOne(op, rep, root, result)
	}
	return false
}

func applyAll(ops []planpkg.Operation, rep *report.Writer, root string, result *Result) {
	for _, op := range ops {
		applyOne(op, rep, root, result)
	}
}

func applyOne(op planpkg.Operation, rep *report.Writer, root string, result *Result) {
	err := Apply(op)
	rep.Operation(root, op, err == nil, err)
	if err != nil {
		log.Error("operation failed", "kind", op.Kind, "path", op.Path, "error", err)
		result.Failed++
		return
	}
	result.Executed++
}

// Apply dispatches a single Operation to the filesystem action its Kind
// implies (§9's exhaustive tagged-union matching, replacing has(moveTo)
// presence tests).
func Apply(op planpkg.Operation) error {
	switch op.Kind {
	case planpkg.KindPreCleanup, planpkg.KindDuplicate, planpkg.KindOrphan, planpkg.KindReorganize, planpkg.KindPostCleanup:
		return moveio.Move(op)
	case planpkg.KindPermissions:
		return os.Chmod(op.Path, os.FileMode(op.DesiredMode))
	case planpkg.KindOwnership:
		return os.Chown(op.Path, int(op.NewUid), int(op.NewGid))
	default:
		return fmt.Errorf("executor: unhandled operation kind %q", op.Kind)
	}
}
