// Package config loads and validates per-root configuration for a curator run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Action tokens recognized in a root's `actions` list (§6).
const (
	ActionPreCleanup  = "pre-cleanup"
	ActionDuplicates  = "duplicates"
	ActionOrphans     = "orphans"
	ActionReorganize  = "reorganize"
	ActionPermissions = "permissions"
	ActionOwnership   = "ownership"
	ActionPostCleanup = "post-cleanup"
)

var allActions = []string{
	ActionPreCleanup, ActionDuplicates, ActionOrphans,
	ActionReorganize, ActionPermissions, ActionOwnership, ActionPostCleanup,
}

// Root is the configuration for a single root path (§6's table).
type Root struct {
	ScanPath             string   `mapstructure:"scanPath"`
	RelativePath         string   `mapstructure:"relativePath"`
	RecycleBinPath       string   `mapstructure:"recycleBinPath"`
	ReorganizeTemplate   string   `mapstructure:"reorganizeTemplate"`
	HashByteLimit        int      `mapstructure:"hashByteLimit"`
	DupeSetExtensions    []string `mapstructure:"dupeSetExtensions"`
	OrphanFileExtensions []string `mapstructure:"orphanFileExtensions"`
	DateThreshold        string   `mapstructure:"dateThreshold"`
	EmptyThreshold       int64    `mapstructure:"emptyThreshold"`
	IgnoreDirectories    []string `mapstructure:"ignoreDirectories"`
	IgnoreFiles          []string `mapstructure:"ignoreFiles"`
	RemoveFiles          []string `mapstructure:"removeFiles"`
	FilePerm             string   `mapstructure:"filePerm"`
	DirPerm              string   `mapstructure:"dirPerm"`
	OwnerUser            string   `mapstructure:"owner_user"`
	OwnerGroup           string   `mapstructure:"owner_group"`
	Actions              []string `mapstructure:"actions"`

	// ReorganizeConcurrency bounds in-flight date extractions (§5, default 5, hard cap 10).
	ReorganizeConcurrency int `mapstructure:"reorganizeConcurrency"`
}

// File is the top-level shape of a roots YAML file: a list of Root configs.
type File struct {
	Roots []Root `mapstructure:"roots"`
}

// Default returns a Root pre-populated with spec.md §6's documented defaults.
func Default() Root {
	return Root{
		ReorganizeTemplate:    "/{year}/{month}/",
		HashByteLimit:         131072,
		DupeSetExtensions:     []string{"jpg", "jpeg", "mp4", "avi"},
		OrphanFileExtensions:  []string{".aae", ".xml", ".ini"},
		DateThreshold:         "1995-01-01",
		EmptyThreshold:        0,
		IgnoreDirectories:     []string{"@eaDir", "@*"},
		IgnoreFiles:           []string{"*.ini"},
		RemoveFiles:           []string{"*picasa.ini", "Thumbs.db"},
		FilePerm:              "664",
		DirPerm:               "775",
		Actions:               append([]string(nil), allActions...),
		ReorganizeConcurrency: 5,
	}
}

// Load reads a roots YAML file and merges each entry over the documented
// defaults, the way the teacher's agent config layers viper over Default().
func Load(path string) ([]Root, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CURATOR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if len(file.Roots) == 0 {
		return nil, fmt.Errorf("config %s defines no roots", path)
	}

	defaults := Default()
	roots := make([]Root, len(file.Roots))
	for i, r := range file.Roots {
		roots[i] = mergeDefaults(r, defaults)
	}
	return roots, nil
}

func mergeDefaults(r, defaults Root) Root {
	if r.ReorganizeTemplate == "" {
		r.ReorganizeTemplate = defaults.ReorganizeTemplate
	}
	if r.HashByteLimit == 0 {
		r.HashByteLimit = defaults.HashByteLimit
	}
	if len(r.DupeSetExtensions) == 0 {
		r.DupeSetExtensions = defaults.DupeSetExtensions
	}
	if len(r.OrphanFileExtensions) == 0 {
		r.OrphanFileExtensions = defaults.OrphanFileExtensions
	}
	if r.DateThreshold == "" {
		r.DateThreshold = defaults.DateThreshold
	}
	if len(r.IgnoreDirectories) == 0 {
		r.IgnoreDirectories = defaults.IgnoreDirectories
	}
	if len(r.IgnoreFiles) == 0 {
		r.IgnoreFiles = defaults.IgnoreFiles
	}
	if len(r.RemoveFiles) == 0 {
		r.RemoveFiles = defaults.RemoveFiles
	}
	if r.FilePerm == "" {
		r.FilePerm = defaults.FilePerm
	}
	if r.DirPerm == "" {
		r.DirPerm = defaults.DirPerm
	}
	if len(r.Actions) == 0 {
		r.Actions = defaults.Actions
	}
	if r.ReorganizeConcurrency == 0 {
		r.ReorganizeConcurrency = defaults.ReorganizeConcurrency
	}
	if r.RelativePath == "" {
		r.RelativePath = r.ScanPath
	}
	return r
}

// HasAction reports whether the named action token is enabled for this root.
func (r Root) HasAction(action string) bool {
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// ReportDir returns the directory a run report should be written to,
// co-located with the recycle bin per SPEC_FULL.md's supplemented feature.
func (r Root) ReportDir() string {
	return filepath.Join(r.RecycleBinPath, ".curator-report")
}

// EnsureDirs creates the recycle bin and report directories if they do not exist.
func (r Root) EnsureDirs() error {
	if err := os.MkdirAll(r.RecycleBinPath, 0o755); err != nil {
		return fmt.Errorf("failed to create recycle bin %s: %w", r.RecycleBinPath, err)
	}
	if err := os.MkdirAll(r.ReportDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create report dir %s: %w", r.ReportDir(), err)
	}
	return nil
}
