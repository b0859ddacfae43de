// Package pipeline runs a sort: scan, extract, classify, plan and move.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ArthurCbn/photobot/internal/classifier"
	"github.com/ArthurCbn/photobot/internal/config"
	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/internal/log"
	"github.com/ArthurCbn/photobot/internal/metadata"
	"github.com/ArthurCbn/photobot/internal/metrics"
	"github.com/ArthurCbn/photobot/internal/mover"
	"github.com/ArthurCbn/photobot/internal/planner"
	"github.com/ArthurCbn/photobot/internal/policy"
	"github.com/ArthurCbn/photobot/internal/scanner"
	"github.com/ArthurCbn/photobot/internal/state"
	"github.com/ArthurCbn/photobot/internal/store"
	"github.com/ArthurCbn/photobot/internal/verify"
	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/google/uuid"
)

// ErrSourceNotFound is returned when the source directory does not exist.
var ErrSourceNotFound = errors.New("source directory not found")

type Pipeline struct {
	cfg              *config.Config
	store            *store.Store
	scanner          *scanner.Scanner
	meta             *metadata.Extractor
	tags             *metadata.ExifTool
	planner          *planner.Planner
	mover            *mover.Mover
	journal          *state.Journal
	logger           *log.Logger
	history          *config.HistoryManager
	progressCallback ProgressCallback
}

// New builds a pipeline from a validated configuration.
func New(cfg *config.Config) (*Pipeline, error) {
	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return nil, err
	}

	journal, err := state.Load(cfg.JournalFile)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	history, err := config.NewHistoryManager()
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create history manager: %w", err)
	}

	tags := metadata.NewExifTool(cfg.ExifToolPath)

	return &Pipeline{
		cfg:     cfg,
		store:   store.Open(cfg.GroupsFile),
		scanner: scanner.New(cfg.IncludeExtensions, cfg.Recursive),
		meta:    metadata.New(tags),
		tags:    tags,
		planner: planner.New(cfg.Dest, cfg.UnmatchedDir, cfg.UnknownYearDir),
		mover: mover.New(cfg.DryRun,
			policy.NewConflictResolver(cfg.ConflictPolicy),
			verify.New(cfg.HashVerify)),
		journal: journal,
		logger:  logger,
		history: history,
	}, nil
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

// SetExtractor replaces the metadata extractor.
func (p *Pipeline) SetExtractor(e *metadata.Extractor) {
	p.meta = e
}

func (p *Pipeline) notify(update ProgressUpdate) {
	if p.progressCallback != nil {
		p.progressCallback(update)
	}
}

// Run sorts every media file under the source directory. The group store is
// read once before any file is touched; a missing source or an unreadable
// store aborts the run. Per-file failures are collected in the summary.
// When ctx is cancelled the run stops between files and returns ctx.Err()
// along with the partial summary.
func (p *Pipeline) Run(ctx context.Context) (*types.RunSummary, error) {
	startTime := time.Now()
	runID := uuid.NewString()

	if info, err := os.Stat(p.cfg.Source); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, p.cfg.Source)
	}

	groups, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load groups from %s: %w", p.store.Path(), err)
	}
	for _, g := range groups {
		if u, ok := g.(group.UnknownGroup); ok {
			p.logger.Warn("Ignoring group " + u.DisplayName() + " with unknown type '" + u.RawKind + "'")
		}
	}
	cls := classifier.New(groups)

	p.logger.Info("Loaded " + strconv.Itoa(len(groups)) + " groups from '" + p.store.Path() + "'")
	p.logger.Info("Starting scan: '" + p.cfg.Source + "'")
	p.notify(ProgressUpdate{Type: "status", Message: "Scanning files..."})

	entries, err := p.scanner.Scan(p.cfg.Source)
	if err != nil {
		summary := &types.RunSummary{StartTime: startTime, EndTime: time.Now()}
		summary.Duration = summary.EndTime.Sub(startTime)
		p.finish(runID, summary, types.SortStatusFailed)
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	p.logger.Info("Found " + strconv.Itoa(len(entries)) + " files")
	p.notify(ProgressUpdate{Type: "status", Message: "Sorting files...", Total: len(entries)})

	summary := &types.RunSummary{
		ScannedFiles: len(entries),
		StartTime:    startTime,
	}

	var runErr error
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			runErr = err
			p.logger.Warn("Sort interrupted after " + strconv.Itoa(i) + " files")
			break
		}

		fileStart := time.Now()
		rec := p.meta.Extract(entry)
		p.logger.LogRecord(rec)
		if len(rec.Errors) > 0 {
			metrics.IncompleteMetadata.WithLabelValues(p.meta.SourceFor(entry.Extension).Name()).Inc()
		}
		if rec.CapturedAt == nil {
			summary.UnknownDate++
		}

		g, ok := cls.Classify(rec)
		switch {
		case !ok:
			summary.Unmatched++
			metrics.Classifications.WithLabelValues("unmatched").Inc()
		case g.Kind() == group.KindDate:
			summary.MatchedDate++
			metrics.Classifications.WithLabelValues(string(g.Kind())).Inc()
		default:
			summary.MatchedArea++
			metrics.Classifications.WithLabelValues(string(g.Kind())).Inc()
		}
		if !ok {
			g = nil
		}

		task := p.planner.Plan(entry, rec, g)
		result := p.mover.Move(task)
		task = result.Task

		switch task.Action {
		case types.MoveActionMoved:
			summary.Moved++
		case types.MoveActionPlanned:
			summary.Planned++
		case types.MoveActionSkipped:
			summary.Skipped++
		case types.MoveActionOverwritten:
			summary.Overwritten++
		}
		metrics.FilesProcessed.WithLabelValues(string(task.Action)).Inc()

		if result.Error != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, types.FileFailure{
				Path:  entry.Path,
				Error: result.Error.Error(),
			})
		} else if !p.cfg.DryRun && task.Status == types.TaskStatusCompleted {
			p.journal.Record(runID, task, result.Checksum)
		}
		p.logger.LogTask(task, time.Since(fileStart))
		p.logger.Progress(i+1, len(entries), entry.Name)

		p.notify(ProgressUpdate{
			Type:     "progress",
			Current:  i + 1,
			Total:    len(entries),
			Filename: entry.Name,
			Group:    task.GroupName,
			Action:   task.Action,
			Error:    task.Error,
		})
	}

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(startTime)

	if !p.cfg.DryRun {
		if err := p.journal.Save(); err != nil {
			p.logger.Error("Failed to save journal", err)
		}
	}

	p.logger.Summary(*summary)
	p.finish(runID, summary, runStatus(summary, runErr))

	return summary, runErr
}

// runStatus reports failed when nothing succeeded, partial when some files
// failed or the run was interrupted.
func runStatus(summary *types.RunSummary, runErr error) types.SortStatus {
	done := summary.Moved + summary.Planned + summary.Skipped + summary.Overwritten
	switch {
	case summary.Failed > 0 && done == 0:
		return types.SortStatusFailed
	case summary.Failed > 0 || runErr != nil:
		return types.SortStatusPartial
	default:
		return types.SortStatusSuccess
	}
}

func (p *Pipeline) finish(runID string, summary *types.RunSummary, status types.SortStatus) {
	metrics.RunsTotal.WithLabelValues(string(status)).Inc()
	metrics.RunDuration.Observe(summary.Duration.Seconds())

	entry := types.SortHistoryEntry{
		ID:         runID,
		Source:     p.cfg.Source,
		Dest:       p.cfg.Dest,
		GroupsFile: p.cfg.GroupsFile,
		DryRun:     p.cfg.DryRun,
		Summary:    *summary,
		Status:     status,
		CreatedAt:  summary.StartTime,
	}
	if err := p.history.Add(entry); err != nil {
		// Don't fail the sort if history save fails
		p.logger.Error("Failed to save sort history", err)
	}

	p.notify(ProgressUpdate{Type: "complete", Summary: summary})
}

// Close stops the metadata helper and closes the log file.
func (p *Pipeline) Close() error {
	var errs []error
	if p.tags != nil {
		errs = append(errs, p.tags.Close())
	}
	errs = append(errs, p.logger.Close())
	return errors.Join(errs...)
}
