package valueobject

import "fmt"

// StageStatus is the progress marker of one status-timeline stage.
type StageStatus struct {
	value string
}

const (
	stageCompleted  = "completed"
	stageInProgress = "in-progress"
	stagePending    = "pending"
)

var (
	StageCompleted  = StageStatus{value: stageCompleted}
	StageInProgress = StageStatus{value: stageInProgress}
	StagePending    = StageStatus{value: stagePending}
)

// NewStageStatus creates a StageStatus from a raw string.
func NewStageStatus(s string) (StageStatus, error) {
	switch s {
	case stageCompleted:
		return StageCompleted, nil
	case stageInProgress:
		return StageInProgress, nil
	case stagePending:
		return StagePending, nil
	default:
		return StageStatus{}, fmt.Errorf("%w: stage status %q", ErrInvalidValue, s)
	}
}

func (s StageStatus) String() string { return s.value }

func (s StageStatus) Equal(other StageStatus) bool { return s.value == other.value }

// Label is the badge text for the stage.
func (s StageStatus) Label() string {
	switch s.value {
	case stageCompleted:
		return "Completed"
	case stageInProgress:
		return "In Progress"
	default:
		return "Pending"
	}
}
