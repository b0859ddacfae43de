package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ArthurCbn/photobot/pkg/types"
)

// maxHistoryEntries bounds the sort history file.
const maxHistoryEntries = 100

// HistoryManager stores the summaries of past sort runs.
type HistoryManager struct {
	dataDir string
}

// ValidatePath rejects paths carrying HTML or script patterns. Such paths
// would be echoed back by the map server.
// Note: <> alone are allowed as they're valid in Unix filenames.
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}

	lowerPath := strings.ToLower(path)

	htmlTagPatterns := []string{
		"<script",
		"</script",
		"<iframe",
		"<object",
		"<embed",
		"<img",
	}

	for _, pattern := range htmlTagPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains HTML tag pattern: %s", pattern)
		}
	}

	dangerousPatterns := []string{
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerPath, pattern) {
			return fmt.Errorf("path contains potentially malicious pattern: %s", pattern)
		}
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	return nil
}

// NewHistoryManager uses ~/.photobot, creating it if needed.
func NewHistoryManager() (*HistoryManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewHistoryManagerAt(filepath.Join(homeDir, DataDirName))
}

// NewHistoryManagerAt uses dataDir, creating it if needed.
func NewHistoryManagerAt(dataDir string) (*HistoryManager, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &HistoryManager{dataDir: dataDir}, nil
}

func (m *HistoryManager) path() string {
	return filepath.Join(m.dataDir, "sort-history.json")
}

// Save writes history to disk.
func (m *HistoryManager) Save(history *types.SortHistory) error {
	history.UpdatedAt = time.Now()

	filename := m.path()
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sort history: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write sort history file: %w", err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename sort history file: %w", err)
	}

	return nil
}

// Load reads history from disk.
// Returns empty history if file doesn't exist.
func (m *HistoryManager) Load() (*types.SortHistory, error) {
	data, err := os.ReadFile(m.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &types.SortHistory{
				Entries:   []types.SortHistoryEntry{},
				UpdatedAt: time.Now(),
			}, nil
		}
		return nil, fmt.Errorf("failed to read sort history file: %w", err)
	}

	var history types.SortHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sort history: %w", err)
	}

	return &history, nil
}

// Add prepends entry and keeps the most recent 100 entries.
func (m *HistoryManager) Add(entry types.SortHistoryEntry) error {
	for field, p := range map[string]string{"source": entry.Source, "dest": entry.Dest, "groups_file": entry.GroupsFile} {
		if err := ValidatePath(p); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	history, err := m.Load()
	if err != nil {
		return fmt.Errorf("failed to load sort history: %w", err)
	}

	history.Entries = append([]types.SortHistoryEntry{entry}, history.Entries...)

	if len(history.Entries) > maxHistoryEntries {
		history.Entries = history.Entries[:maxHistoryEntries]
	}

	if err := m.Save(history); err != nil {
		return fmt.Errorf("failed to save sort history: %w", err)
	}

	return nil
}
