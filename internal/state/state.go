// Package state keeps a journal of the files moved by sort runs.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ArthurCbn/photobot/pkg/types"
)

type MovedFile struct {
	Source    string           `json:"source"`
	DestPath  string           `json:"dest_path"`
	Size      int64            `json:"size"`
	Checksum  string           `json:"checksum,omitempty"`
	GroupID   string           `json:"group_id,omitempty"`
	GroupName string           `json:"group_name,omitempty"`
	Action    types.MoveAction `json:"action"`
	RunID     string           `json:"run_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type Journal struct {
	mu       sync.RWMutex
	filePath string
	Moved    map[string]MovedFile `json:"moved"`
	LastRun  time.Time            `json:"last_run"`
}

func New(filePath string) *Journal {
	return &Journal{
		filePath: filePath,
		Moved:    make(map[string]MovedFile),
	}
}

// Load reads the journal at filePath. A missing file gives an empty journal.
func Load(filePath string) (*Journal, error) {
	j := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	if err := json.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("failed to parse journal: %w", err)
	}
	if j.Moved == nil {
		j.Moved = make(map[string]MovedFile)
	}

	return j, nil
}

func (j *Journal) Save() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(j.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := j.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, j.filePath); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}

// Record stores the outcome of a completed move, keyed by destination.
func (j *Journal) Record(runID string, task types.MoveTask, checksum string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	j.Moved[task.DestPath] = MovedFile{
		Source:    task.Source.Path,
		DestPath:  task.DestPath,
		Size:      task.Source.Size,
		Checksum:  checksum,
		GroupID:   task.GroupID,
		GroupName: task.GroupName,
		Action:    task.Action,
		RunID:     runID,
		Timestamp: now,
	}
	j.LastRun = now
}

// Lookup returns the entry for a destination path.
func (j *Journal) Lookup(destPath string) (MovedFile, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	m, ok := j.Moved[destPath]
	return m, ok
}

// Run returns the entries written by runID, ordered by destination.
func (j *Journal) Run(runID string) []MovedFile {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []MovedFile
	for _, m := range j.Moved {
		if m.RunID == runID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].DestPath < out[b].DestPath })
	return out
}
