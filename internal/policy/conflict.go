package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ArthurCbn/photobot/pkg/types"
)

// ErrDestinationExists is reported under the fail policy.
var ErrDestinationExists = errors.New("destination already exists")

// ParseConflictPolicy accepts "fail", "skip" or "overwrite". Empty means fail.
func ParseConflictPolicy(s string) (types.ConflictPolicy, error) {
	switch p := types.ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return types.ConflictPolicyFail, nil
	case types.ConflictPolicyFail, types.ConflictPolicySkip, types.ConflictPolicyOverwrite:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want fail, skip or overwrite)", s)
	}
}

type ConflictResolver struct {
	policy types.ConflictPolicy
}

func NewConflictResolver(policy types.ConflictPolicy) *ConflictResolver {
	if policy == "" {
		policy = types.ConflictPolicyFail
	}
	return &ConflictResolver{policy: policy}
}

func (c *ConflictResolver) Policy() types.ConflictPolicy {
	return c.policy
}

type Resolution struct {
	Action types.MoveAction
	Skip   bool
	// Err is set when the file must be reported as failed.
	Err error
}

// Resolve decides what to do when task.DestPath may already exist.
func (c *ConflictResolver) Resolve(task *types.MoveTask) Resolution {
	info, err := os.Lstat(task.DestPath)
	if os.IsNotExist(err) {
		return Resolution{Action: types.MoveActionMoved}
	}
	if err != nil {
		return Resolution{Action: types.MoveActionFailed, Err: fmt.Errorf("failed to check destination: %w", err)}
	}
	if info.IsDir() {
		return Resolution{Action: types.MoveActionFailed, Err: fmt.Errorf("%w: %s is a directory", ErrDestinationExists, task.DestPath)}
	}

	switch c.policy {
	case types.ConflictPolicySkip:
		return Resolution{Action: types.MoveActionSkipped, Skip: true}

	case types.ConflictPolicyOverwrite:
		return Resolution{Action: types.MoveActionOverwritten}

	default:
		return Resolution{Action: types.MoveActionFailed, Err: fmt.Errorf("%w: %s", ErrDestinationExists, task.DestPath)}
	}
}
