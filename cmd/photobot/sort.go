package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArthurCbn/photobot/internal/pipeline"
	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/spf13/cobra"
)

var (
	includeExt     []string
	conflictPolicy string
	unmatchedDir   string
	unknownYearDir string
	journalFile    string
	logFile        string
	logJSON        bool
	dryRun         bool
	hashVerify     bool
)

var sortCmd = &cobra.Command{
	Use:   "sort <source> <destination>",
	Short: "Move media files from source into group folders under destination",
	Args:  cobra.ExactArgs(2),
	RunE:  runSort,
}

func init() {
	sortCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "scan source sub-directories")
	sortCmd.Flags().StringSliceVarP(&includeExt, "include-ext", "e", nil, "file extensions to include")
	sortCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "policy when the destination exists: fail, skip, overwrite")
	sortCmd.Flags().StringVar(&unmatchedDir, "unmatched-dir", "", "folder for files matching no group")
	sortCmd.Flags().StringVar(&unknownYearDir, "unknown-year-dir", "", "year folder for files without capture date")
	sortCmd.Flags().StringVar(&journalFile, "journal-file", "", "journal of moved files")
	sortCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	sortCmd.Flags().BoolVar(&logJSON, "log-json", false, "write JSON log lines")
	sortCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan moves without touching files")
	sortCmd.Flags().BoolVar(&hashVerify, "hash-verify", false, "verify cross-device copies with SHA-256")
}

func runSort(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg.Source = args[0]
	cfg.Dest = args[1]
	if len(includeExt) > 0 {
		cfg.IncludeExtensions = includeExt
	}
	if conflictPolicy != "" {
		cfg.ConflictPolicy = types.ConflictPolicy(conflictPolicy)
	}
	if unmatchedDir != "" {
		cfg.UnmatchedDir = unmatchedDir
	}
	if unknownYearDir != "" {
		cfg.UnknownYearDir = unknownYearDir
	}
	if journalFile != "" {
		cfg.JournalFile = journalFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if hashVerify {
		cfg.HashVerify = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be moved", summary.Failed)
	}
	return nil
}
