package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ArthurCbn/photobot/pkg/types"
)

// TestValidatePath는 테스트 코드 동작을 검증하거나 보조합니다.
func TestValidatePath(t *testing.T) {
	// XSS 관련 패턴은 차단하고, 일반 경로는 허용해야 한다.
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "empty path is allowed", path: "", wantErr: false},
		{name: "angle brackets only are allowed", path: "/tmp/a<b>.jpg", wantErr: false},
		{name: "html tag pattern is rejected", path: "/tmp/<script>alert(1)</script>", wantErr: true},
		{name: "javascript url is rejected", path: "javascript:alert(1)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr=%v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestHistoryManager_AddTrimsTo100는 테스트 코드 동작을 검증하거나 보조합니다.
func TestHistoryManager_AddTrimsTo100(t *testing.T) {
	// 정렬 히스토리는 최신 100개까지만 유지해야 한다.
	m := &HistoryManager{dataDir: t.TempDir()}

	for i := 0; i < 105; i++ {
		entry := types.SortHistoryEntry{ID: fmt.Sprintf("%d", i)}
		if err := m.Add(entry); err != nil {
			t.Fatalf("add history entry failed at %d: %v", i, err)
		}
	}

	history, err := m.Load()
	if err != nil {
		t.Fatalf("load sort history failed: %v", err)
	}

	if len(history.Entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(history.Entries))
	}
	if history.Entries[0].ID != "104" {
		t.Fatalf("expected newest id 104, got %s", history.Entries[0].ID)
	}
	if history.Entries[len(history.Entries)-1].ID != "5" {
		t.Fatalf("expected oldest id 5, got %s", history.Entries[len(history.Entries)-1].ID)
	}
}

// TestHistoryManager_AddRejectsMaliciousPath는 테스트 코드 동작을 검증하거나 보조합니다.
func TestHistoryManager_AddRejectsMaliciousPath(t *testing.T) {
	m := &HistoryManager{dataDir: t.TempDir()}

	err := m.Add(types.SortHistoryEntry{ID: "x", Source: "/tmp/<script>alert(1)</script>"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "source" {
		t.Fatalf("expected field source, got %s", validationErr.Field)
	}
}

// TestHistoryManager_SaveAndLoad_RoundTrip는 테스트 코드 동작을 검증하거나 보조합니다.
func TestHistoryManager_SaveAndLoad_RoundTrip(t *testing.T) {
	m := &HistoryManager{dataDir: t.TempDir()}
	entry := types.SortHistoryEntry{
		ID:      "run-1",
		Source:  "/src",
		Dest:    "/dest",
		DryRun:  true,
		Status:  types.SortStatusPartial,
		Summary: types.RunSummary{ScannedFiles: 3, Moved: 2, Failed: 1},
	}
	if err := m.Add(entry); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	history, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	got := history.Entries[0]
	if got.ID != "run-1" || !got.DryRun || got.Status != types.SortStatusPartial || got.Summary.Moved != 2 {
		t.Fatalf("unexpected entry after round trip: %+v", got)
	}
	if history.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be set")
	}
}

// TestHistoryManager_LoadReturnsEmptyWhenMissing는 테스트 코드 동작을 검증하거나 보조합니다.
func TestHistoryManager_LoadReturnsEmptyWhenMissing(t *testing.T) {
	m := &HistoryManager{dataDir: t.TempDir()}

	history, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(history.Entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(history.Entries))
	}
}

// TestHistoryManager_LoadReturnsUnmarshalError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestHistoryManager_LoadReturnsUnmarshalError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sort-history.json"), []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := (&HistoryManager{dataDir: dir}).Load(); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

// TestNewHistoryManager_CreatesDefaultDirectory는 테스트 코드 동작을 검증하거나 보조합니다.
func TestNewHistoryManager_CreatesDefaultDirectory(t *testing.T) {
	// NewHistoryManager는 HOME 기준 ~/.photobot 디렉터리를 생성해야 한다.
	home := t.TempDir()
	t.Setenv("HOME", home)

	m, err := NewHistoryManager()
	if err != nil {
		t.Fatalf("new history manager failed: %v", err)
	}
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if _, err := os.Stat(filepath.Join(home, ".photobot")); err != nil {
		t.Fatalf("expected data dir to exist: %v", err)
	}
}

// TestNewHistoryManager_ReturnsErrorWhenHomeIsFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestNewHistoryManager_ReturnsErrorWhenHomeIsFile(t *testing.T) {
	// HOME이 파일이면 데이터 디렉터리 생성이 실패해야 한다.
	homeFile := filepath.Join(t.TempDir(), "home-file")
	if err := os.WriteFile(homeFile, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create fake home file: %v", err)
	}
	t.Setenv("HOME", homeFile)

	if _, err := NewHistoryManager(); err == nil {
		t.Fatal("expected NewHistoryManager error")
	}
}
