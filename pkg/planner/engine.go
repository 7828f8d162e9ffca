// Package planner implements the plan/step state machine: agent-proposed tool
// invocations are validated into a reviewable plan, gated behind explicit
// approval, and executed strictly in order against an injected command
// dispatcher, fail-fast and without rollback.
package planner

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zereraz/igne-sub002/internal/audit"
	"github.com/zereraz/igne-sub002/internal/metrics"
	"github.com/zereraz/igne-sub002/pkg/dispatcher"
	"github.com/zereraz/igne-sub002/pkg/toolcatalog"
)

// Config holds the engine's injected collaborators. Catalog and Dispatcher
// are required; the rest are optional.
type Config struct {
	Catalog    *toolcatalog.Catalog
	Dispatcher dispatcher.Dispatcher
	Reader     dispatcher.ResourceReader
	Metrics    *metrics.Metrics
	Audit      *audit.Logger
}

// Engine owns the plan store and drives the full plan lifecycle
type Engine struct {
	catalog    *toolcatalog.Catalog
	dispatcher dispatcher.Dispatcher
	reader     dispatcher.ResourceReader
	store      *Store
	emitter    *Emitter
	metrics    *metrics.Metrics
	audit      *audit.Logger
	logger     zerolog.Logger

	// mu guards all status mutations across plans; dispatcher calls happen
	// outside of it.
	mu sync.Mutex
}

// NewEngine creates a plan engine
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("tool catalog is required")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("command dispatcher is required")
	}

	return &Engine{
		catalog:    cfg.Catalog,
		dispatcher: cfg.Dispatcher,
		reader:     cfg.Reader,
		store:      NewStore(),
		emitter:    NewEmitter(),
		metrics:    cfg.Metrics,
		audit:      cfg.Audit,
		logger:     log.With().Str("component", "planner").Logger(),
	}, nil
}

// CreatePlan validates the requested steps against the tool catalog and, on
// success, stores and returns a new pending plan. Any invalid step fails the
// whole creation and nothing is stored.
func (e *Engine) CreatePlan(description string, requests []StepRequest, planContext map[string]interface{}) (*Plan, error) {
	steps := make([]*Step, 0, len(requests))
	for _, req := range requests {
		spec, ok := e.catalog.Lookup(req.ToolID)
		if !ok {
			return nil, &ToolNotFoundError{ToolID: req.ToolID}
		}
		for _, param := range spec.RequiredParams() {
			if _, present := req.Params[param]; !present {
				return nil, &MissingParameterError{ToolID: req.ToolID, Param: param}
			}
		}
		if err := e.catalog.ValidateParams(req.ToolID, req.Params); err != nil {
			return nil, err
		}

		stepID, _ := gonanoid.New()
		steps = append(steps, &Step{
			ID:          "step_" + stepID,
			ToolID:      req.ToolID,
			Description: req.Description,
			Params:      req.Params,
			ReadOnly:    spec.ReadOnly,
			Status:      StepStatusPending,
		})
	}

	planID, _ := gonanoid.New()
	plan := &Plan{
		ID:            "plan_" + planID,
		Description:   description,
		Steps:         steps,
		Status:        PlanStatusPending,
		TransactionID: uuid.NewString(),
		Context:       planContext,
		CreatedAt:     time.Now(),
	}

	e.store.Put(plan)

	e.logger.Info().
		Str("plan_id", plan.ID).
		Str("transaction_id", plan.TransactionID).
		Int("steps", len(plan.Steps)).
		Msg("Plan created")

	if e.metrics != nil {
		e.metrics.PlansCreatedTotal.Inc()
	}
	e.emitter.Emit(Event{Type: EventPlanCreated, Plan: plan})

	return plan, nil
}

// GetPlan returns the stored plan. The plan is live, not a copy: callers
// observe later status mutations.
func (e *Engine) GetPlan(planID string) (*Plan, error) {
	plan, ok := e.store.Get(planID)
	if !ok {
		return nil, &PlanNotFoundError{PlanID: planID}
	}
	return plan, nil
}

// ListPlans returns all stored plans, most recently created first
func (e *Engine) ListPlans() []*Plan {
	return e.store.List()
}

// DeletePlan removes a plan from the store. An unknown id reports false
// without error; a plan that is currently executing cannot be deleted.
func (e *Engine) DeletePlan(planID string) (bool, error) {
	e.mu.Lock()
	plan, ok := e.store.Get(planID)
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	if plan.Status == PlanStatusExecuting {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrPlanExecuting, planID)
	}
	e.store.Remove(planID)
	e.mu.Unlock()

	e.logger.Info().Str("plan_id", planID).Msg("Plan deleted")

	if e.metrics != nil {
		e.metrics.PlansDeletedTotal.Inc()
	}
	e.emitter.Emit(Event{Type: EventPlanDeleted, Plan: plan})

	return true, nil
}

// Subscribe registers an event handler and returns its unsubscribe function
func (e *Engine) Subscribe(handler EventHandler) func() {
	return e.emitter.Subscribe(handler)
}

// lookupStep finds a plan and one of its steps, with typed errors for both
// miss cases
func (e *Engine) lookupStep(planID, stepID string) (*Plan, *Step, error) {
	plan, ok := e.store.Get(planID)
	if !ok {
		return nil, nil, &PlanNotFoundError{PlanID: planID}
	}
	step := plan.Step(stepID)
	if step == nil {
		return nil, nil, &StepNotFoundError{PlanID: planID, StepID: stepID}
	}
	return plan, step, nil
}
