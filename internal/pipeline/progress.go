package pipeline

import "github.com/ArthurCbn/photobot/pkg/types"

type ProgressCallback func(update ProgressUpdate)

// ProgressUpdate is sent to the callback while a sort runs. Type is one of
// "status", "progress", "complete" or "error".
type ProgressUpdate struct {
	Type     string            `json:"type"`
	Message  string            `json:"message,omitempty"`
	Current  int               `json:"current,omitempty"`
	Total    int               `json:"total,omitempty"`
	Filename string            `json:"filename,omitempty"`
	Group    string            `json:"group,omitempty"`
	Action   types.MoveAction  `json:"action,omitempty"`
	Summary  *types.RunSummary `json:"summary,omitempty"`
	Error    string            `json:"error,omitempty"`
}
