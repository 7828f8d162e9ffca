package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/zereraz/igne-sub002/internal/audit"
	"github.com/zereraz/igne-sub002/pkg/dispatcher"
	"github.com/zereraz/igne-sub002/pkg/toolcatalog"
)

// ExecuteStep executes one approved step via the command dispatcher. The step
// must be approved; anything else is a precondition error and nothing runs.
// Dispatcher failures are captured into the step and the returned outcome,
// never propagated as an error.
func (e *Engine) ExecuteStep(ctx context.Context, planID, stepID string) (*StepOutcome, error) {
	e.mu.Lock()
	plan, step, err := e.lookupStep(planID, stepID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if step.Status != StepStatusApproved {
		e.mu.Unlock()
		return nil, &StepNotApprovedError{StepID: step.ID, Status: step.Status}
	}
	spec, ok := e.catalog.Lookup(step.ToolID)
	if !ok {
		e.mu.Unlock()
		return nil, &ToolNotFoundError{ToolID: step.ToolID}
	}
	step.Status = StepStatusExecuting
	e.mu.Unlock()

	return e.runStep(ctx, plan, step, spec), nil
}

// ExecutePlan drives every approved step of the plan in its fixed order,
// awaiting each before the next, and stops at the first failure. Steps after
// a failure keep whatever status they had; completed steps are never undone.
// A second concurrent run of the same plan is refused.
func (e *Engine) ExecutePlan(ctx context.Context, planID string) (*Plan, error) {
	plan, ok := e.store.Get(planID)
	if !ok {
		return nil, &PlanNotFoundError{PlanID: planID}
	}
	if !plan.runMu.TryLock() {
		return nil, fmt.Errorf("%w: %s", ErrPlanAlreadyRunning, planID)
	}
	defer plan.runMu.Unlock()

	e.mu.Lock()
	started := time.Now()
	plan.Status = PlanStatusExecuting
	plan.StartedAt = &started
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("transaction_id", plan.TransactionID).
		Int("steps", len(plan.Steps)).
		Msg("Plan execution started")

	e.emitter.Emit(Event{Type: EventPlanStarted, Plan: plan})

	runFailed := false
	for _, step := range plan.Steps {
		e.mu.Lock()
		if step.Status != StepStatusApproved {
			e.mu.Unlock()
			e.logger.Debug().
				Str("plan_id", plan.ID).
				Str("step_id", step.ID).
				Str("status", string(step.Status)).
				Msg("Skipping step not in approved status")
			continue
		}
		spec, ok := e.catalog.Lookup(step.ToolID)
		if !ok {
			step.Status = StepStatusExecuting
			e.mu.Unlock()
			e.failStep(plan, step, (&ToolNotFoundError{ToolID: step.ToolID}).Error(), 0)
			runFailed = true
			break
		}
		step.Status = StepStatusExecuting
		e.mu.Unlock()

		outcome := e.runStep(ctx, plan, step, spec)
		if !outcome.Success {
			runFailed = true
			break
		}
	}

	e.mu.Lock()
	completed := time.Now()
	plan.CompletedAt = &completed
	if runFailed {
		plan.Status = PlanStatusFailed
	} else {
		plan.Status = PlanStatusCompleted
	}
	status := plan.Status
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("status", string(status)).
		Dur("duration", completed.Sub(started)).
		Msg("Plan execution finished")

	if e.metrics != nil {
		e.metrics.PlanExecutionsTotal.WithLabelValues(string(status)).Inc()
		e.metrics.PlanDuration.Observe(completed.Sub(started).Seconds())
	}
	if e.audit != nil {
		auditStatus := "success"
		if runFailed {
			auditStatus = "failure"
		}
		e.audit.Record(audit.Entry{
			TransactionID: plan.TransactionID,
			PlanID:        plan.ID,
			Action:        "plan_executed",
			Status:        auditStatus,
		})
	}
	if runFailed {
		e.emitter.Emit(Event{Type: EventPlanFailed, Plan: plan})
	} else {
		e.emitter.Emit(Event{Type: EventPlanCompleted, Plan: plan})
	}

	return plan, nil
}

// runStep dispatches a step already marked executing and records the outcome
func (e *Engine) runStep(ctx context.Context, plan *Plan, step *Step, spec *toolcatalog.ToolSpec) *StepOutcome {
	args := spec.Arguments(step.Params)

	start := time.Now()
	result, err := e.dispatcher.Execute(ctx, spec.CommandID, dispatcher.SourceAgent, args...)
	duration := time.Since(start)

	if err != nil {
		return e.failStep(plan, step, err.Error(), duration)
	}

	e.mu.Lock()
	step.Status = StepStatusCompleted
	step.Result = result
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("step_id", step.ID).
		Str("tool_id", step.ToolID).
		Dur("duration", duration).
		Msg("Step completed")

	if e.metrics != nil {
		e.metrics.StepExecutionsTotal.WithLabelValues(step.ToolID, string(StepStatusCompleted)).Inc()
		e.metrics.StepDuration.WithLabelValues(step.ToolID).Observe(duration.Seconds())
	}
	if e.audit != nil {
		e.audit.Record(audit.Entry{
			TransactionID: plan.TransactionID,
			PlanID:        plan.ID,
			StepID:        step.ID,
			ToolID:        step.ToolID,
			Action:        "step_executed",
			Status:        "success",
		})
	}
	e.emitter.Emit(Event{Type: EventStepCompleted, Plan: plan, Step: step})

	return &StepOutcome{Success: true, Data: result, Duration: duration}
}

// failStep records a step execution failure and emits the outcome
func (e *Engine) failStep(plan *Plan, step *Step, message string, duration time.Duration) *StepOutcome {
	e.mu.Lock()
	step.Status = StepStatusFailed
	step.Error = message
	e.mu.Unlock()

	e.logger.Warn().
		Str("plan_id", plan.ID).
		Str("step_id", step.ID).
		Str("tool_id", step.ToolID).
		Str("error", message).
		Dur("duration", duration).
		Msg("Step failed")

	if e.metrics != nil {
		e.metrics.StepExecutionsTotal.WithLabelValues(step.ToolID, string(StepStatusFailed)).Inc()
		e.metrics.StepDuration.WithLabelValues(step.ToolID).Observe(duration.Seconds())
	}
	if e.audit != nil {
		e.audit.Record(audit.Entry{
			TransactionID: plan.TransactionID,
			PlanID:        plan.ID,
			StepID:        step.ID,
			ToolID:        step.ToolID,
			Action:        "step_executed",
			Status:        "failure",
			Metadata:      map[string]interface{}{"error": message},
		})
	}
	e.emitter.Emit(Event{Type: EventStepFailed, Plan: plan, Step: step})

	return &StepOutcome{Success: false, Error: message, Duration: duration}
}
