package planner

// DefaultRejectionReason is recorded when a step or plan is rejected without
// an explicit reason.
const DefaultRejectionReason = "Rejected by user"

// ApproveStep marks a single step as approved. Sibling steps and the plan
// status are left untouched.
func (e *Engine) ApproveStep(planID, stepID string) error {
	e.mu.Lock()
	plan, step, err := e.lookupStep(planID, stepID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	step.Status = StepStatusApproved
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("step_id", step.ID).
		Str("tool_id", step.ToolID).
		Msg("Step approved")

	if e.metrics != nil {
		e.metrics.StepApprovalsTotal.Inc()
	}
	e.emitter.Emit(Event{Type: EventStepApproved, Plan: plan, Step: step})

	return nil
}

// RejectStep marks a single step as rejected, recording the reason in the
// step's error field. The plan status is not recomputed.
func (e *Engine) RejectStep(planID, stepID, reason string) error {
	if reason == "" {
		reason = DefaultRejectionReason
	}

	e.mu.Lock()
	plan, step, err := e.lookupStep(planID, stepID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	step.Status = StepStatusRejected
	step.Error = reason
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("step_id", step.ID).
		Str("reason", reason).
		Msg("Step rejected")

	if e.metrics != nil {
		e.metrics.StepRejectionsTotal.Inc()
	}
	e.emitter.Emit(Event{Type: EventStepRejected, Plan: plan, Step: step})

	return nil
}

// ApproveAll approves every step still pending and marks the plan approved
func (e *Engine) ApproveAll(planID string) error {
	e.mu.Lock()
	plan, ok := e.store.Get(planID)
	if !ok {
		e.mu.Unlock()
		return &PlanNotFoundError{PlanID: planID}
	}
	approved := 0
	for _, step := range plan.Steps {
		if step.Status == StepStatusPending {
			step.Status = StepStatusApproved
			approved++
		}
	}
	plan.Status = PlanStatusApproved
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Int("approved", approved).
		Msg("Plan approved")

	if e.metrics != nil {
		e.metrics.StepApprovalsTotal.Add(float64(approved))
	}
	e.emitter.Emit(Event{Type: EventPlanApproved, Plan: plan})

	return nil
}

// RejectPlan rejects every step with the given reason and marks the plan
// rejected
func (e *Engine) RejectPlan(planID, reason string) error {
	if reason == "" {
		reason = DefaultRejectionReason
	}

	e.mu.Lock()
	plan, ok := e.store.Get(planID)
	if !ok {
		e.mu.Unlock()
		return &PlanNotFoundError{PlanID: planID}
	}
	for _, step := range plan.Steps {
		step.Status = StepStatusRejected
		step.Error = reason
	}
	plan.Status = PlanStatusRejected
	e.mu.Unlock()

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("reason", reason).
		Msg("Plan rejected")

	if e.metrics != nil {
		e.metrics.StepRejectionsTotal.Add(float64(len(plan.Steps)))
	}
	e.emitter.Emit(Event{Type: EventPlanRejected, Plan: plan})

	return nil
}
