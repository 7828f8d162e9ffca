package planner

import (
	"errors"
	"fmt"
)

// ErrPlanExecuting is returned when a plan cannot be deleted because a run is
// in flight.
var ErrPlanExecuting = errors.New("cannot delete executing plan")

// ErrPlanAlreadyRunning is returned when a second ExecutePlan call races an
// in-flight run of the same plan.
var ErrPlanAlreadyRunning = errors.New("plan is already executing")

// ToolNotFoundError indicates a step request referenced an unknown tool id
type ToolNotFoundError struct {
	ToolID string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("Tool not found: %s", e.ToolID)
}

// MissingParameterError indicates a step request omitted a required parameter
type MissingParameterError struct {
	ToolID string
	Param  string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameter: %s (tool %s)", e.Param, e.ToolID)
}

// PlanNotFoundError indicates the referenced plan does not exist in the store
type PlanNotFoundError struct {
	PlanID string
}

func (e *PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan not found: %s", e.PlanID)
}

// StepNotFoundError indicates the referenced step does not exist in the plan
type StepNotFoundError struct {
	PlanID string
	StepID string
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step not found in plan %s: %s", e.PlanID, e.StepID)
}

// StepNotApprovedError indicates an execution attempt on a step that has not
// been approved
type StepNotApprovedError struct {
	StepID string
	Status StepStatus
}

func (e *StepNotApprovedError) Error() string {
	return fmt.Sprintf("step %s is not approved (status: %s)", e.StepID, e.Status)
}
