package types

import "time"

// StepStatus is the lifecycle state of a single pipeline step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepSkipped StepStatus = "skipped"
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
)

// StepState is the observable state of one step in a pipeline run.
type StepState struct {
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	Duration  float64    `json:"duration_seconds,omitempty"`
}

// PipelineSnapshot is a point-in-time view of a pipeline run, served by the
// status API and printed on failure.
type PipelineSnapshot struct {
	Pipeline  string      `json:"pipeline"`
	Running   bool        `json:"running"`
	StartedAt time.Time   `json:"started_at"`
	Steps     []StepState `json:"steps"`
}
