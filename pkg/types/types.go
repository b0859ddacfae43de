// Package types defines core data structures used across photobot modules.
package types

import (
	"time"
)

// FileEntry represents a scanned file with its metadata.
type FileEntry struct {
	// Path is the absolute path to the source file.
	Path string
	// Name is the base filename.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Extension is the lowercase file extension without dot (e.g., "jpg", "mp4").
	Extension string
	// IsVideo indicates if this is a video file.
	IsVideo bool
}

// GeoPoint is a WGS 84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MediaRecord contains the metadata extracted from a single media file.
type MediaRecord struct {
	// Path is the source file path.
	Path string
	// Coords is nil unless both latitude and longitude were read.
	Coords *GeoPoint
	// CapturedAt is the capture time, nil if unknown. Zoned timestamps keep
	// their offset; naive timestamps keep their wall clock in UTC.
	CapturedAt *time.Time
	// Naive reports that CapturedAt carried no timezone.
	Naive bool
	// TimeSource indicates where the timestamp came from (e.g., "EXIF:DateTimeOriginal", "filename").
	TimeSource string
	// Errors collects non-fatal extraction problems, for logging only.
	Errors []string
}

// HasCoords reports whether both coordinates are known.
func (r MediaRecord) HasCoords() bool {
	return r.Coords != nil
}

// MoveTask represents a planned file move.
type MoveTask struct {
	// Source is the source FileEntry.
	Source FileEntry
	// Record contains extracted metadata.
	Record MediaRecord
	// GroupID and GroupName identify the matched group, empty when unmatched.
	GroupID   string
	GroupName string
	// GroupKind is the matched group's kind ("date", "circle", "polygone").
	GroupKind string
	// DestDir is the destination directory (e.g., "DEST/2025/Vacances/07" or "DEST/unknown-year/z_unsorted").
	DestDir string
	// DestPath is the full destination file path.
	DestPath string
	// Status indicates the task status.
	Status TaskStatus
	// Error contains error message if task failed.
	Error string
	// Action indicates what action was taken.
	Action MoveAction
}

// Matched reports whether the task was assigned to a group.
func (t MoveTask) Matched() bool {
	return t.GroupID != ""
}

// TaskStatus represents the status of a move task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// MoveAction represents the action taken for a file.
type MoveAction string

const (
	MoveActionMoved       MoveAction = "moved"
	MoveActionPlanned     MoveAction = "planned"
	MoveActionSkipped     MoveAction = "skipped"
	MoveActionOverwritten MoveAction = "overwritten"
	MoveActionFailed      MoveAction = "failed"
)

// ConflictPolicy defines how to handle an existing file at the destination.
type ConflictPolicy string

const (
	// ConflictPolicyFail reports the file as failed and leaves it in place.
	ConflictPolicyFail      ConflictPolicy = "fail"
	ConflictPolicySkip      ConflictPolicy = "skip"
	ConflictPolicyOverwrite ConflictPolicy = "overwrite"
)

// FileFailure records a file that could not be moved.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunSummary contains statistics for a completed sort run.
type RunSummary struct {
	ScannedFiles int
	Moved        int
	Planned      int
	Skipped      int
	Overwritten  int
	Failed       int
	MatchedDate  int
	MatchedArea  int
	Unmatched    int
	UnknownDate  int
	Failures     []FileFailure
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// SortStatus represents the outcome of a sort run.
type SortStatus string

const (
	SortStatusSuccess SortStatus = "success"
	SortStatusPartial SortStatus = "partial"
	SortStatusFailed  SortStatus = "failed"
)

// SortHistoryEntry represents a single sort run record.
type SortHistoryEntry struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Dest       string     `json:"dest"`
	GroupsFile string     `json:"groups_file"`
	DryRun     bool       `json:"dry_run"`
	Summary    RunSummary `json:"summary"`
	Status     SortStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SortHistory stores the collection of sort history entries, newest first.
type SortHistory struct {
	Entries   []SortHistoryEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}
