// Package reorganize computes reorganize target paths from a date template
// and proposes moves, idempotently (§4.7).
package reorganize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/archivekeeper/curator/internal/concurrency"
	"github.com/archivekeeper/curator/internal/dateextract"
	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

var log = logging.L("reorganize")

// Options configures a reorganize pass.
type Options struct {
	RelativePath  string
	Template      string
	DateThreshold time.Time
	Concurrency   int
}

// Analyze computes Reorganize Operations for every eligible file whose
// target directory differs from its current directory, parallelizing date
// extraction (EXIF-dominated I/O) under a bounded limiter.
func Analyze(ctx context.Context, model *scanmodel.Model, opts Options) []planpkg.Operation {
	limiter := concurrency.New(opts.Concurrency)

	eligible := make([]*scanmodel.FileEntry, 0)
	for _, f := range model.FilesInOrder() {
		if f.Ignored || f.MarkedForDelete {
			continue
		}
		eligible = append(eligible, f)
	}

	var mu sync.Mutex
	var ops []planpkg.Operation

	tasks := make([]concurrency.Task, len(eligible))
	for i, f := range eligible {
		f := f
		tasks[i] = func(ctx context.Context) error {
			op, ok := planFor(f, opts)
			if !ok {
				return nil
			}
			mu.Lock()
			ops = append(ops, op)
			mu.Unlock()
			return nil
		}
	}

	if failures, err := limiter.Run(ctx, tasks); err != nil {
		log.Warn("reorganize pass interrupted", "error", err)
	} else if failures > 0 {
		log.Warn("reorganize date extraction had failures", "failures", failures)
	}

	return ops
}

func planFor(f *scanmodel.FileEntry, opts Options) (planpkg.Operation, bool) {
	result, ok := dateextract.Extract(f, opts.DateThreshold)
	if !ok {
		return planpkg.Operation{}, false
	}

	targetDir := substituteTemplate(opts.Template, result.Date)
	targetDir = filepath.Join(opts.RelativePath, targetDir)
	targetDir = filepath.Clean(targetDir)

	currentDir := filepath.Clean(f.Dir)
	if targetDir == currentDir {
		return planpkg.Operation{}, false
	}

	name := targetFileName(f)
	targetPath := filepath.Join(targetDir, name)

	return planpkg.Operation{
		Kind:   planpkg.KindReorganize,
		Path:   f.Path,
		MoveTo: targetPath,
		Reason: fmt.Sprintf("reorganize by date (%s)", result.Source),
		Depth:  f.Depth,
	}, true
}

func substituteTemplate(template string, date time.Time) string {
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", date.Year()),
		"{month}", fmt.Sprintf("%02d", int(date.Month())),
		"{day}", fmt.Sprintf("%02d", date.Day()),
	)
	return r.Replace(template)
}

// targetFileName disambiguates files that would collide after
// reorganization: the source directory's leaf name is appended before the
// extension unless it is already embedded in the file's name.
func targetFileName(f *scanmodel.FileEntry) string {
	leaf := filepath.Base(f.Dir)
	name := f.Name()
	if strings.Contains(strings.ToLower(name), strings.ToLower(leaf)) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", stem, leaf, ext)
}
