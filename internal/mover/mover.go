// Package mover moves planned media files into their destination folders.
package mover

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ArthurCbn/photobot/internal/policy"
	"github.com/ArthurCbn/photobot/internal/verify"
	"github.com/ArthurCbn/photobot/pkg/types"
)

type Mover struct {
	dryRun   bool
	resolver *policy.ConflictResolver
	verifier *verify.Verifier
}

func New(dryRun bool, resolver *policy.ConflictResolver, verifier *verify.Verifier) *Mover {
	if resolver == nil {
		resolver = policy.NewConflictResolver(types.ConflictPolicyFail)
	}
	if verifier == nil {
		verifier = verify.New(false)
	}
	return &Mover{
		dryRun:   dryRun,
		resolver: resolver,
		verifier: verifier,
	}
}

type MoveResult struct {
	Task types.MoveTask
	// Checksum is set when the file was copied across devices with hashing on.
	Checksum string
	Error    error
}

// Move resolves conflicts, creates the destination directory and moves the
// file. In dry-run mode nothing on disk changes.
func (m *Mover) Move(task types.MoveTask) MoveResult {
	res := m.resolver.Resolve(&task)
	if res.Err != nil {
		return failed(task, res.Err)
	}
	if res.Skip {
		task.Status = types.TaskStatusSkipped
		task.Action = res.Action
		return MoveResult{Task: task}
	}

	if m.dryRun {
		task.Status = types.TaskStatusCompleted
		task.Action = types.MoveActionPlanned
		return MoveResult{Task: task}
	}

	if err := os.MkdirAll(filepath.Dir(task.DestPath), 0755); err != nil {
		return failed(task, fmt.Errorf("failed to create destination directory: %w", err))
	}

	checksum, err := m.moveFile(task.Source.Path, task.DestPath)
	if err != nil {
		return failed(task, err)
	}

	task.Status = types.TaskStatusCompleted
	task.Action = res.Action
	return MoveResult{Task: task, Checksum: checksum}
}

func failed(task types.MoveTask, err error) MoveResult {
	task.Status = types.TaskStatusFailed
	task.Action = types.MoveActionFailed
	task.Error = err.Error()
	return MoveResult{Task: task, Error: err}
}

// rename is replaced in tests to simulate a cross-device move.
var rename = os.Rename

func (m *Mover) moveFile(src, dest string) (string, error) {
	err := rename(src, dest)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", err
	}

	// Different filesystems: copy, verify, then drop the source.
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	partPath := dest + ".part"
	if err := atomicCopy(src, partPath, dest); err != nil {
		os.Remove(partPath)
		return "", err
	}

	vr, err := m.verifier.Verify(src, dest, info.Size())
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("verification failed: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return vr.Checksum, fmt.Errorf("copied but failed to remove source: %w", err)
	}
	return vr.Checksum, nil
}

func atomicCopy(src, partDest, finalDest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(partDest)
	if err != nil {
		return err
	}

	_, err = io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	// Preserve modification time
	info, err := srcFile.Stat()
	if err == nil {
		os.Chtimes(partDest, info.ModTime(), info.ModTime())
	}

	return os.Rename(partDest, finalDest)
}
