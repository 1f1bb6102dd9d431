// Package orchestrator runs the full per-root pipeline of §4.11: scan,
// destructive analyzers, non-destructive analyzers, arbitration, execution,
// rescan, post-cleanup, execution — independently across however many
// roots a config file lists, modeled on the teacher's BackupManager/
// RunBackup shape (internal/backup/backup.go) generalized from a single
// scheduled job to a sequence of independent root passes.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/archivekeeper/curator/internal/cleanup"
	"github.com/archivekeeper/curator/internal/concurrency"
	"github.com/archivekeeper/curator/internal/config"
	"github.com/archivekeeper/curator/internal/duplicate"
	"github.com/archivekeeper/curator/internal/executor"
	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/orphan"
	"github.com/archivekeeper/curator/internal/ownership"
	"github.com/archivekeeper/curator/internal/pathmatch"
	"github.com/archivekeeper/curator/internal/permissions"
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/reorganize"
	"github.com/archivekeeper/curator/internal/report"
	"github.com/archivekeeper/curator/internal/scanmodel"
	"github.com/archivekeeper/curator/internal/scanner"
)

var log = logging.L("orchestrator")

// RootResult tallies what happened while processing a single root.
type RootResult struct {
	ScanPath  string
	Executed  int
	Failed    int
	Skipped   int
	Cancelled bool
	Error     error
}

// DryRun builds and returns the arbitrated Plan for a root without
// confirming or executing it (the `scan` command's read-only preview).
func DryRun(ctx context.Context, root config.Root) (*planpkg.Plan, *scanmodel.Model, error) {
	matchers := compileMatchers(root)

	model := scanner.Scan(scanner.Options{
		ScanRoot:          root.ScanPath,
		RecycleBinPath:    root.RecycleBinPath,
		IgnoreDirectories: matchers.ignoreDirs,
		IgnoreFiles:       matchers.ignoreFiles,
		RemoveFiles:       matchers.removeFiles,
	})

	arb, err := analyze(ctx, root, model)
	if err != nil {
		return nil, model, err
	}
	return arb.Plan(), model, nil
}

// Run executes the full pipeline for every root in sequence. A failure
// processing one root is logged and does not prevent later roots from
// running (§7, §4.11).
func Run(ctx context.Context, roots []config.Root, confirmer executor.Confirmer) []RootResult {
	results := make([]RootResult, 0, len(roots))
	for _, root := range roots {
		res := RunRoot(ctx, root, confirmer)
		if res.Error != nil {
			log.Error("root pipeline failed", "root", root.ScanPath, "error", res.Error)
		}
		results = append(results, res)
	}
	return results
}

// RunRoot runs scan through post-cleanup for a single root.
func RunRoot(ctx context.Context, root config.Root, confirmer executor.Confirmer) RootResult {
	result := RootResult{ScanPath: root.ScanPath}
	started := time.Now()

	if err := root.EnsureDirs(); err != nil {
		result.Error = err
		return result
	}

	rep, err := report.New(root.RecycleBinPath)
	if err != nil {
		result.Error = fmt.Errorf("open run report: %w", err)
		return result
	}
	defer rep.Close()
	rep.RunStarted([]string{root.ScanPath})

	matchers := compileMatchers(root)

	model := scanner.Scan(scanner.Options{
		ScanRoot:          root.ScanPath,
		RecycleBinPath:    root.RecycleBinPath,
		IgnoreDirectories: matchers.ignoreDirs,
		IgnoreFiles:       matchers.ignoreFiles,
		RemoveFiles:       matchers.removeFiles,
	})

	arb, err := analyze(ctx, root, model)
	if err != nil {
		result.Error = err
		return result
	}

	execResult := executor.Run(arb.Plan(), confirmer, rep, root.ScanPath)
	accumulate(&result, execResult)

	if !execResult.Cancelled && root.HasAction(config.ActionPostCleanup) {
		postModel := scanner.Scan(scanner.Options{
			ScanRoot:          root.ScanPath,
			RecycleBinPath:    root.RecycleBinPath,
			IgnoreDirectories: matchers.ignoreDirs,
			IgnoreFiles:       matchers.ignoreFiles,
			RemoveFiles:       matchers.removeFiles,
		})
		post := cleanup.Analyze(postModel, root.ScanPath, root.RecycleBinPath, root.EmptyThreshold, planpkg.KindPostCleanup)
		postArb := planpkg.NewArbiter()
		postArb.ClaimPostCleanup(append(post.Directories, post.Files...))

		postResult := executor.Run(postArb.Plan(), confirmer, rep, root.ScanPath)
		accumulate(&result, postResult)
	}

	rep.RunFinished(result.Executed, result.Failed)
	log.Info("root pipeline finished", "root", root.ScanPath, "executed", result.Executed,
		"failed", result.Failed, "skipped", result.Skipped, "durationMs", time.Since(started).Milliseconds())
	return result
}

func accumulate(result *RootResult, exec executor.Result) {
	result.Executed += exec.Executed
	result.Failed += exec.Failed
	result.Skipped += exec.Skipped
	if exec.Cancelled {
		result.Cancelled = true
	}
}

// analyze runs every enabled analyzer over model and arbitrates their
// output into a single Plan (§4.10).
func analyze(ctx context.Context, root config.Root, model *scanmodel.Model) (*planpkg.Arbiter, error) {
	arb := planpkg.NewArbiter()

	if root.HasAction(config.ActionPreCleanup) {
		pre := cleanup.Analyze(model, root.ScanPath, root.RecycleBinPath, root.EmptyThreshold, planpkg.KindPreCleanup)
		arb.ClaimDestructive(planpkg.KindPreCleanup, append(pre.Directories, pre.Files...))
	}

	if root.HasAction(config.ActionDuplicates) {
		limiter := concurrency.New(root.ReorganizeConcurrency)
		dupOps := duplicate.Analyze(model, duplicate.Options{
			ScanRoot:          root.ScanPath,
			RecycleBinPath:    root.RecycleBinPath,
			HashByteLimit:     root.HashByteLimit,
			DupeSetExtensions: root.DupeSetExtensions,
			Limiter:           limiter,
		})
		arb.ClaimDestructive(planpkg.KindDuplicate, dupOps)
	}

	if root.HasAction(config.ActionOrphans) {
		orphanOps := orphan.Analyze(model, root.ScanPath, root.RecycleBinPath)
		arb.ClaimDestructive(planpkg.KindOrphan, orphanOps)
	}

	if root.HasAction(config.ActionReorganize) {
		threshold, err := parseThreshold(root.DateThreshold)
		if err != nil {
			return nil, err
		}
		reorgOps := reorganize.Analyze(ctx, model, reorganize.Options{
			RelativePath:  root.RelativePath,
			Template:      root.ReorganizeTemplate,
			DateThreshold: threshold,
			Concurrency:   root.ReorganizeConcurrency,
		})
		arb.FilterNonDestructive(planpkg.KindReorganize, reorgOps)
	}

	if root.HasAction(config.ActionPermissions) {
		fileMode, err := config.NormalizeMode(root.FilePerm)
		if err != nil {
			return nil, fmt.Errorf("filePerm: %w", err)
		}
		dirMode, err := config.NormalizeMode(root.DirPerm)
		if err != nil {
			return nil, fmt.Errorf("dirPerm: %w", err)
		}
		permOps := permissions.Analyze(model, fileMode, dirMode)
		arb.FilterNonDestructive(planpkg.KindPermissions, permOps)
	}

	if root.HasAction(config.ActionOwnership) {
		resolved, err := ownership.Resolve(root.OwnerUser, root.OwnerGroup)
		if err != nil {
			// §7: an ownership account lookup failure is fatal for this
			// root's ownership action, not the whole run.
			log.Error("ownership action skipped", "root", root.ScanPath, "error", err)
		} else {
			ownOps := ownership.Analyze(model, resolved)
			arb.FilterNonDestructive(planpkg.KindOwnership, ownOps)
		}
	}

	return arb, nil
}

type compiledMatchers struct {
	ignoreDirs  *pathmatch.Matcher
	ignoreFiles *pathmatch.Matcher
	removeFiles *pathmatch.Matcher
}

func compileMatchers(root config.Root) compiledMatchers {
	return compiledMatchers{
		ignoreDirs:  pathmatch.Compile(root.IgnoreDirectories),
		ignoreFiles: pathmatch.Compile(root.IgnoreFiles),
		removeFiles: pathmatch.Compile(root.RemoveFiles),
	}
}

func parseThreshold(dateThreshold string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateThreshold)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateThreshold %q: %w", dateThreshold, err)
	}
	return t, nil
}
