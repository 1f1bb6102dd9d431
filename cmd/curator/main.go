// Command curator runs the maintenance pipeline (scan, analyze, arbitrate,
// confirm, execute) over a configured set of root paths.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archivekeeper/curator/internal/config"
	"github.com/archivekeeper/curator/internal/executor"
	"github.com/archivekeeper/curator/internal/logging"
	"github.com/archivekeeper/curator/internal/orchestrator"
)

var (
	version = "0.1.0"

	cfgFile   string
	yesToAll  bool
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curator maintains large on-disk file hierarchies",
	Long:  `Curator discovers duplicates, orphans, misplaced files, and permission/ownership drift across one or more root paths, stages a plan, and applies it under operator confirmation.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline (scan, analyze, confirm, execute) for every configured root",
	RunE: func(cmd *cobra.Command, args []string) error {
		roots, err := loadRoots()
		if err != nil {
			return err
		}

		confirmer := &executor.CLIConfirmer{YesToAll: yesToAll}
		results := orchestrator.Run(context.Background(), roots, confirmer)

		failed := false
		for _, r := range results {
			if r.Error != nil {
				executor.Errorf("root %s failed: %v", r.ScanPath, r.Error)
				failed = true
				continue
			}
			fmt.Printf("%s: executed=%d failed=%d skipped=%d cancelled=%v\n",
				r.ScanPath, r.Executed, r.Failed, r.Skipped, r.Cancelled)
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Dry run: scan and analyze every root, printing the staged plan without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		roots, err := loadRoots()
		if err != nil {
			return err
		}

		for _, root := range roots {
			plan, model, err := orchestrator.DryRun(context.Background(), root)
			if err != nil {
				executor.Errorf("root %s: %v", root.ScanPath, err)
				continue
			}
			fmt.Printf("=== %s ===\n", root.ScanPath)
			fmt.Printf("scanned=%d ignored=%d totalBytes=%d\n",
				model.Counters.Scanned, model.Counters.Ignored, model.Counters.TotalBytes)
			for _, kind := range plan.Kinds() {
				ops := plan.For(kind)
				if len(ops) > 0 {
					fmt.Printf("  %s: %d operation(s)\n", kind, len(ops))
				}
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("curator v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a roots YAML file (required for run/scan)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	runCmd.Flags().BoolVar(&yesToAll, "yes-to-all", false, "skip interactive confirmation and apply every staged operation")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	cobra.OnInitialize(func() {
		logging.Init(logFormat, logLevel, os.Stderr)
	})

	if err := rootCmd.Execute(); err != nil {
		executor.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadRoots() ([]config.Root, error) {
	if cfgFile == "" {
		return nil, fmt.Errorf("--config is required")
	}
	roots, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	fatal := false
	for i := range roots {
		result := roots[i].Validate()
		for _, w := range result.Warnings {
			executor.Warnf("root %d: %v", i, w)
		}
		if result.HasFatals() {
			for _, f := range result.Fatals {
				executor.Errorf("root %d: %v", i, f)
			}
			fatal = true
		}
	}
	if fatal {
		return nil, fmt.Errorf("one or more roots failed configuration validation")
	}
	return roots, nil
}
