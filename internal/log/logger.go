package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ArthurCbn/photobot/pkg/types"
	"github.com/rs/zerolog"
)

// Logger writes structured records to a log file and human-readable
// progress and summaries to the console.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	zl      zerolog.Logger
}

// New opens logFilePath for appending. logJSON writes one JSON object per
// line, logText writes aligned text lines. Both may be enabled.
func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var writers []io.Writer
	if logJSON {
		writers = append(writers, file)
	}
	if logText {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			NoColor:    true,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	zl := zerolog.Nop()
	if len(writers) > 0 {
		zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}

	return &Logger{
		console: os.Stdout,
		file:    file,
		zl:      zl,
	}, nil
}

// NewConsole logs text lines to w and has no log file.
func NewConsole(w io.Writer) *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	return &Logger{console: w, zl: zl}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{console: io.Discard, zl: zerolog.Nop()}
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) LogTask(task types.MoveTask, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := l.zl.Info()
	if task.Error != "" {
		ev = l.zl.Error().Str("error", task.Error)
	}

	ev = ev.Str("source", task.Source.Path).
		Str("dest", task.DestPath).
		Str("action", string(task.Action)).
		Dur("duration", duration)
	if task.Matched() {
		ev = ev.Str("group", task.GroupName).Str("group_kind", task.GroupKind)
	}
	if task.Record.TimeSource != "" {
		ev = ev.Str("time_source", task.Record.TimeSource)
	}
	ev.Msgf("%s: %s -> %s", task.Action, task.Source.Name, task.DestPath)
}

// LogRecord writes the extraction problems of rec at debug level.
func (l *Logger) LogRecord(rec types.MediaRecord) {
	if len(rec.Errors) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zl.Debug().Str("path", rec.Path).Strs("reasons", rec.Errors).Msg("incomplete metadata")
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zl.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zl.Warn().Msg(msg)
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zl.Error().Err(err).Msg(msg)
}

func (l *Logger) Summary(summary types.RunSummary) {
	fmt.Fprintln(l.console, "\n=== photobot Summary ===")
	fmt.Fprintf(l.console, "Scanned files:  %d\n", summary.ScannedFiles)
	fmt.Fprintf(l.console, "Moved:          %d\n", summary.Moved)
	if summary.Planned > 0 {
		fmt.Fprintf(l.console, "Planned:        %d\n", summary.Planned)
	}
	fmt.Fprintf(l.console, "Skipped:        %d\n", summary.Skipped)
	fmt.Fprintf(l.console, "Overwritten:    %d\n", summary.Overwritten)
	fmt.Fprintf(l.console, "Failed:         %d\n", summary.Failed)
	fmt.Fprintf(l.console, "Date groups:    %d\n", summary.MatchedDate)
	fmt.Fprintf(l.console, "Area groups:    %d\n", summary.MatchedArea)
	fmt.Fprintf(l.console, "Unmatched:      %d\n", summary.Unmatched)
	fmt.Fprintf(l.console, "Unknown date:   %d\n", summary.UnknownDate)
	fmt.Fprintf(l.console, "Duration:       %s\n", summary.Duration.Round(time.Millisecond))
	for _, f := range summary.Failures {
		fmt.Fprintf(l.console, "  FAILED %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintln(l.console, "========================")
}

func (l *Logger) Progress(current, total int, filename string) {
	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
