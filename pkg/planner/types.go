package planner

import (
	"sync"
	"time"
)

// StepStatus represents the approval/execution status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusApproved  StepStatus = "approved"
	StepStatusRejected  StepStatus = "rejected"
	StepStatusExecuting StepStatus = "executing"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// PlanStatus represents the overall status of a plan
type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusApproved  PlanStatus = "approved"
	PlanStatusRejected  PlanStatus = "rejected"
	PlanStatusExecuting PlanStatus = "executing"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusFailed    PlanStatus = "failed"
)

// StepRequest is a single requested tool invocation used to build a plan
type StepRequest struct {
	ToolID      string                 `json:"tool_id"`
	Description string                 `json:"description"`
	Params      map[string]interface{} `json:"params"`
}

// Step is one validated, individually approvable unit of work.
// Steps are created together with their plan and never added or removed
// afterward; only Status, Result and Error mutate.
type Step struct {
	ID          string                 `json:"id"`
	ToolID      string                 `json:"tool_id"`
	Description string                 `json:"description"`
	Params      map[string]interface{} `json:"params"`
	ReadOnly    bool                   `json:"read_only"`
	Status      StepStatus             `json:"status"`
	Result      interface{}            `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Plan is an ordered collection of steps sharing one transaction id.
// Step order is execution order and is fixed at creation.
type Plan struct {
	ID            string                 `json:"id"`
	Description   string                 `json:"description"`
	Steps         []*Step                `json:"steps"`
	Status        PlanStatus             `json:"status"`
	TransactionID string                 `json:"transaction_id"`
	Context       map[string]interface{} `json:"context,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	StartedAt     *time.Time             `json:"started_at,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`

	// runMu serializes ExecutePlan calls targeting this plan.
	runMu sync.Mutex
}

// Step returns the step with the given id, or nil if the plan has no such step
func (p *Plan) Step(stepID string) *Step {
	for _, s := range p.Steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

// StepOutcome is the result of executing a single step
type StepOutcome struct {
	Success  bool          `json:"success"`
	Data     interface{}   `json:"data,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
