package pipeline

import (
	"time"
)

// Stage identifiers, in execution order.
const (
	StageIDValidate  = "validate"
	StageIDRepair    = "repair"
	StageIDWinsorize = "winsorize"
	StageIDSplit     = "split"
	StageIDFit       = "fit_statistics"
	StageIDDerive    = "derive_features"
	StageIDTrain     = "train"
	StageIDScore     = "score"
)

// RunStatusValue represents the overall run status enum.
type RunStatusValue string

const (
	RunStatusPending   RunStatusValue = "pending"
	RunStatusRunning   RunStatusValue = "running"
	RunStatusCompleted RunStatusValue = "completed"
	RunStatusFailed    RunStatusValue = "failed"
	RunStatusCancelled RunStatusValue = "cancelled"
)

// StageState tracks the execution of a single stage within a run.
type StageState struct {
	ID        string         `json:"id"`
	Status    RunStatusValue `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Error     string         `json:"error,omitempty"`

	// Metadata carries stage-specific counters (records in, records
	// dropped, features kept) for the run summary.
	Metadata map[string]any `json:"metadata,omitempty"`
}

func newStageState(id string) *StageState {
	return &StageState{
		ID:        id,
		Status:    RunStatusRunning,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}
}

func (s *StageState) complete() {
	now := time.Now()
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.Status = RunStatusCompleted
}

func (s *StageState) fail(err error) {
	now := time.Now()
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.Status = RunStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// RunState is the complete state of one pipeline execution. Stages run
// sequentially, so no locking is needed; the state is read only after
// Run returns.
type RunState struct {
	RunID     string         `json:"run_id"`
	Status    RunStatusValue `json:"status"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Stages    []*StageState  `json:"stages"`
	Error     string         `json:"error,omitempty"`
}

func newRunState(runID string) *RunState {
	return &RunState{
		RunID:     runID,
		Status:    RunStatusRunning,
		StartTime: time.Now(),
	}
}

func (r *RunState) beginStage(id string) *StageState {
	st := newStageState(id)
	r.Stages = append(r.Stages, st)
	return st
}

func (r *RunState) complete() {
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

func (r *RunState) fail(err error) {
	now := time.Now()
	r.EndTime = &now
	if err != nil {
		r.Error = err.Error()
	}
	r.Status = RunStatusFailed
}

func (r *RunState) cancel(err error) {
	now := time.Now()
	r.EndTime = &now
	if err != nil {
		r.Error = err.Error()
	}
	r.Status = RunStatusCancelled
}

// Stage returns the state for the given stage ID, or nil if the run
// never reached it.
func (r *RunState) Stage(id string) *StageState {
	for _, st := range r.Stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}
