package mover

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/ArthurCbn/photobot/internal/policy"
	"github.com/ArthurCbn/photobot/internal/verify"
	"github.com/ArthurCbn/photobot/pkg/types"
)

// newTask는 테스트 코드 동작을 검증하거나 보조합니다.
func newTask(t *testing.T, content string) (types.MoveTask, string) {
	t.Helper()
	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "src.jpg")
	if err := os.WriteFile(srcPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}
	destDir := filepath.Join(tmpDir, "dest", "2023", "Rome")
	return types.MoveTask{
		Source:   types.FileEntry{Path: srcPath, Name: "src.jpg", Size: int64(len(content))},
		DestDir:  destDir,
		DestPath: filepath.Join(destDir, "src.jpg"),
	}, srcPath
}

// TestMover_DryRunTouchesNothing는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_DryRunTouchesNothing(t *testing.T) {
	// Dry-run 모드에서는 파일과 폴더가 그대로여야 한다.
	task, srcPath := newTask(t, "photo-bytes")

	result := New(true, nil, nil).Move(task)

	if result.Error != nil {
		t.Fatalf("expected no error in dry-run, got %v", result.Error)
	}
	if result.Task.Status != types.TaskStatusCompleted || result.Task.Action != types.MoveActionPlanned {
		t.Fatalf("unexpected dry-run result: %s/%s", result.Task.Status, result.Task.Action)
	}
	if _, err := os.Stat(srcPath); err != nil {
		t.Fatal("source must remain in dry-run")
	}
	if _, err := os.Stat(task.DestDir); !os.IsNotExist(err) {
		t.Fatal("destination directory must not be created in dry-run")
	}
}

// TestMover_MovesFile는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_MovesFile(t *testing.T) {
	task, srcPath := newTask(t, "photo-bytes")

	result := New(false, nil, nil).Move(task)
	if result.Error != nil {
		t.Fatalf("move failed: %v", result.Error)
	}
	if result.Task.Action != types.MoveActionMoved {
		t.Fatalf("expected moved action, got %s", result.Task.Action)
	}

	data, err := os.ReadFile(task.DestPath)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(data) != "photo-bytes" {
		t.Fatalf("unexpected destination content: %s", data)
	}
	if _, err := os.Stat(srcPath); !os.IsNotExist(err) {
		t.Fatal("source must be gone after move")
	}
}

// TestMover_ExistingDirectoryIsNotAnError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_ExistingDirectoryIsNotAnError(t *testing.T) {
	task, _ := newTask(t, "x")
	if err := os.MkdirAll(task.DestDir, 0755); err != nil {
		t.Fatal(err)
	}

	if result := New(false, nil, nil).Move(task); result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
}

// TestMover_ConflictPolicies는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_ConflictPolicies(t *testing.T) {
	tests := []struct {
		policy     types.ConflictPolicy
		wantStatus types.TaskStatus
		wantDest   string
		srcRemains bool
	}{
		{types.ConflictPolicyFail, types.TaskStatusFailed, "old", true},
		{types.ConflictPolicySkip, types.TaskStatusSkipped, "old", true},
		{types.ConflictPolicyOverwrite, types.TaskStatusCompleted, "new", false},
	}

	for _, tt := range tests {
		task, srcPath := newTask(t, "new")
		if err := os.MkdirAll(task.DestDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(task.DestPath, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}

		result := New(false, policy.NewConflictResolver(tt.policy), nil).Move(task)

		if result.Task.Status != tt.wantStatus {
			t.Errorf("%s: expected status %s, got %s", tt.policy, tt.wantStatus, result.Task.Status)
		}
		data, _ := os.ReadFile(task.DestPath)
		if string(data) != tt.wantDest {
			t.Errorf("%s: expected destination %q, got %q", tt.policy, tt.wantDest, data)
		}
		_, err := os.Stat(srcPath)
		if (err == nil) != tt.srcRemains {
			t.Errorf("%s: unexpected source presence (err=%v)", tt.policy, err)
		}
	}
}

// TestMover_CrossDeviceFallback는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_CrossDeviceFallback(t *testing.T) {
	// 다른 파일시스템으로의 이동은 복사 → 검증 → 원본 삭제 순서로 처리되어야 한다.
	orig := rename
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { rename = orig }()

	task, srcPath := newTask(t, "photo-bytes")
	result := New(false, nil, verify.New(true)).Move(task)
	if result.Error != nil {
		t.Fatalf("move failed: %v", result.Error)
	}
	if len(result.Checksum) != 64 {
		t.Fatalf("expected sha256 checksum, got %q", result.Checksum)
	}
	if _, err := os.Stat(srcPath); !os.IsNotExist(err) {
		t.Fatal("source must be removed after verified copy")
	}
	if _, err := os.Stat(task.DestPath + ".part"); !os.IsNotExist(err) {
		t.Fatal("part file should not remain")
	}
}

// TestMover_RenameError는 테스트 코드 동작을 검증하거나 보조합니다.
func TestMover_RenameError(t *testing.T) {
	orig := rename
	rename = func(oldpath, newpath string) error { return errors.New("denied") }
	defer func() { rename = orig }()

	task, srcPath := newTask(t, "x")
	result := New(false, nil, nil).Move(task)
	if result.Error == nil || result.Task.Status != types.TaskStatusFailed {
		t.Fatal("expected failed task")
	}
	if result.Task.Error == "" {
		t.Fatal("expected error message on task")
	}
	if _, err := os.Stat(srcPath); err != nil {
		t.Fatal("source must stay in place on failure")
	}
}
