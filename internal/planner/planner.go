package planner

import (
	"path/filepath"
	"strings"

	"github.com/ArthurCbn/photobot/internal/group"
	"github.com/ArthurCbn/photobot/pkg/types"
)

const (
	DefaultUnmatchedDir   = "z_unsorted"
	DefaultUnknownYearDir = "unknown-year"
)

type Planner struct {
	destRoot       string
	unmatchedDir   string
	unknownYearDir string
}

func New(destRoot, unmatchedDir, unknownYearDir string) *Planner {
	if unmatchedDir == "" {
		unmatchedDir = DefaultUnmatchedDir
	}
	if unknownYearDir == "" {
		unknownYearDir = DefaultUnknownYearDir
	}
	return &Planner{
		destRoot:       destRoot,
		unmatchedDir:   SanitizeName(unmatchedDir),
		unknownYearDir: SanitizeName(unknownYearDir),
	}
}

// Plan derives the destination of entry. g is nil when rec matched no group.
// Directories are not created here.
func (p *Planner) Plan(entry types.FileEntry, rec types.MediaRecord, g group.Group) types.MoveTask {
	task := types.MoveTask{
		Source: entry,
		Record: rec,
		Status: types.TaskStatusPending,
	}

	year := p.unknownYearDir
	month := ""
	if rec.CapturedAt != nil {
		// folders follow the capture's own wall clock, not the UTC instant
		year = rec.CapturedAt.Format("2006")
		month = rec.CapturedAt.Format("01")
	}

	parts := []string{p.destRoot, year}

	switch g.(type) {
	case nil:
		parts = append(parts, p.unmatchedDir)
		if month != "" {
			parts = append(parts, month)
		}

	case group.DateGroup:
		parts = append(parts, GroupDir(g))

	default:
		parts = append(parts, GroupDir(g))
		if month != "" {
			parts = append(parts, month)
		}
	}

	if g != nil {
		b := g.Ident()
		task.GroupID = b.ID
		task.GroupName = b.DisplayName()
		task.GroupKind = string(g.Kind())
	}

	task.DestDir = filepath.Join(parts...)
	task.DestPath = filepath.Join(task.DestDir, entry.Name)
	return task
}

// GroupDir returns the folder name used for g.
func GroupDir(g group.Group) string {
	b := g.Ident()
	name := SanitizeName(b.Name)
	if name == "" {
		name = SanitizeName(group.DefaultName(b.ID))
	}
	return name
}

// SanitizeName turns s into a single path component. It returns "" when
// nothing usable is left.
func SanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
	}

	return strings.Trim(sb.String(), " .")
}
