package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var reorganizeTemplateRegex = regexp.MustCompile(`^/(\{(year|month|day)\}/?)+$`)

var knownActions = map[string]bool{
	ActionPreCleanup: true, ActionDuplicates: true, ActionOrphans: true,
	ActionReorganize: true, ActionPermissions: true, ActionOwnership: true,
	ActionPostCleanup: true,
}

// ValidationResult separates fatal problems (§7 "configuration invalid",
// which short-circuit the root) from warnings about values that were
// clamped to a safe default rather than rejected.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals and warnings concatenated, fatals first.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// Validate checks a root's config for invalid values. Fatal problems are
// returned in Fatals and must stop that root per §7. Out-of-range numeric
// knobs are clamped in place and reported as Warnings, mirroring the
// teacher's tiered Validate/clamp pattern (SPEC_FULL.md's config clamping
// note).
func (r *Root) Validate() ValidationResult {
	var result ValidationResult

	if r.ScanPath == "" || !filepath.IsAbs(r.ScanPath) {
		result.Fatals = append(result.Fatals, fmt.Errorf("scanPath must be an absolute path, got %q", r.ScanPath))
	}
	if r.RecycleBinPath == "" || !filepath.IsAbs(r.RecycleBinPath) {
		result.Fatals = append(result.Fatals, fmt.Errorf("recycleBinPath must be an absolute path, got %q", r.RecycleBinPath))
	}
	if r.RelativePath != "" && !filepath.IsAbs(r.RelativePath) {
		result.Fatals = append(result.Fatals, fmt.Errorf("relativePath must be an absolute path, got %q", r.RelativePath))
	}

	if !reorganizeTemplateRegex.MatchString(r.ReorganizeTemplate) {
		result.Fatals = append(result.Fatals, fmt.Errorf("reorganizeTemplate %q does not match ^/(\\{year|month|day\\}/?)+$", r.ReorganizeTemplate))
	}

	for _, a := range r.Actions {
		if !knownActions[a] {
			result.Fatals = append(result.Fatals, fmt.Errorf("unknown action %q", a))
		}
	}
	if r.HasAction(ActionOwnership) && (r.OwnerUser == "" || r.OwnerGroup == "") {
		result.Fatals = append(result.Fatals, fmt.Errorf("owner_user and owner_group are required when the ownership action is enabled"))
	}

	if _, err := NormalizeMode(r.FilePerm); err != nil {
		result.Fatals = append(result.Fatals, fmt.Errorf("filePerm %q is invalid: %w", r.FilePerm, err))
	}
	if _, err := NormalizeMode(r.DirPerm); err != nil {
		result.Fatals = append(result.Fatals, fmt.Errorf("dirPerm %q is invalid: %w", r.DirPerm, err))
	}

	// Clamp numeric knobs to safe ranges instead of rejecting the config.
	if r.HashByteLimit <= 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("hashByteLimit %d is invalid, clamping to 131072", r.HashByteLimit))
		r.HashByteLimit = 131072
	}
	if r.EmptyThreshold < 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("emptyThreshold %d is negative, clamping to 0", r.EmptyThreshold))
		r.EmptyThreshold = 0
	}
	if r.ReorganizeConcurrency <= 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("reorganizeConcurrency %d is invalid, clamping to 5", r.ReorganizeConcurrency))
		r.ReorganizeConcurrency = 5
	} else if r.ReorganizeConcurrency > 10 {
		result.Warnings = append(result.Warnings, fmt.Errorf("reorganizeConcurrency %d exceeds hard cap 10, clamping", r.ReorganizeConcurrency))
		r.ReorganizeConcurrency = 10
	}

	for _, err := range result.Warnings {
		slog.Warn("config validation", "error", err, "scanPath", r.ScanPath)
	}

	return result
}

// NormalizeMode accepts permission strings as either octal-like decimal
// ("664") or octal-prefixed ("0o664" / "0664") and returns the numeric mode.
func NormalizeMode(mode string) (uint32, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return 0, fmt.Errorf("empty permission string")
	}
	cleaned := mode
	switch {
	case strings.HasPrefix(cleaned, "0o"), strings.HasPrefix(cleaned, "0O"):
		cleaned = cleaned[2:]
	case strings.HasPrefix(cleaned, "0") && len(cleaned) > 1:
		cleaned = cleaned[1:]
	}
	v, err := strconv.ParseUint(cleaned, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("not a valid octal permission: %w", err)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("permission %q exceeds 0777", mode)
	}
	return uint32(v), nil
}
