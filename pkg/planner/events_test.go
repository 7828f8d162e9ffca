package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_RegistrationOrder(t *testing.T) {
	emitter := NewEmitter()

	var seen []string
	emitter.Subscribe(func(Event) { seen = append(seen, "first") })
	emitter.Subscribe(func(Event) { seen = append(seen, "second") })
	emitter.Subscribe(func(Event) { seen = append(seen, "third") })

	emitter.Emit(Event{Type: EventPlanCreated})

	assert.Equal(t, []string{"first", "second", "third"}, seen)
}

func TestEmitter_Unsubscribe(t *testing.T) {
	emitter := NewEmitter()

	var calls int
	unsubscribe := emitter.Subscribe(func(Event) { calls++ })

	emitter.Emit(Event{Type: EventPlanCreated})
	assert.Equal(t, 1, calls)

	unsubscribe()
	emitter.Emit(Event{Type: EventPlanCreated})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, emitter.SubscriberCount())

	// unsubscribing twice is a no-op
	unsubscribe()
}

func TestEmitter_UnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	emitter := NewEmitter()

	var calls int
	handler := func(Event) { calls++ }
	first := emitter.Subscribe(handler)
	emitter.Subscribe(handler)

	first()
	emitter.Emit(Event{Type: EventPlanDeleted})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, emitter.SubscriberCount())
}

func TestEmitter_StampsTimestamp(t *testing.T) {
	emitter := NewEmitter()

	var got Event
	emitter.Subscribe(func(evt Event) { got = evt })
	emitter.Emit(Event{Type: EventPlanStarted})

	assert.False(t, got.Timestamp.IsZero())
}

func TestEngine_EventsOverPlanLifecycle(t *testing.T) {
	d := newMockDispatcher()
	engine := newTestEngine(t, d)

	var types []EventType
	unsubscribe := engine.Subscribe(func(evt Event) {
		types = append(types, evt.Type)
	})
	defer unsubscribe()

	plan, err := engine.CreatePlan("p", []StepRequest{writeRequest("A.md", "a")}, nil)
	require.NoError(t, err)
	require.NoError(t, engine.ApproveAll(plan.ID))

	_, err = engine.ExecutePlan(context.Background(), plan.ID)
	require.NoError(t, err)

	removed, err := engine.DeletePlan(plan.ID)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, []EventType{
		EventPlanCreated,
		EventPlanApproved,
		EventPlanStarted,
		EventStepCompleted,
		EventPlanCompleted,
		EventPlanDeleted,
	}, types)
}

func TestEngine_EventsOnFailure(t *testing.T) {
	d := newMockDispatcher()
	d.failArg["A.md"] = errors.New("boom")
	engine := newTestEngine(t, d)

	var types []EventType
	engine.Subscribe(func(evt Event) { types = append(types, evt.Type) })

	plan, err := engine.CreatePlan("p", []StepRequest{writeRequest("A.md", "a")}, nil)
	require.NoError(t, err)
	require.NoError(t, engine.ApproveAll(plan.ID))

	_, err = engine.ExecutePlan(context.Background(), plan.ID)
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventPlanCreated,
		EventPlanApproved,
		EventPlanStarted,
		EventStepFailed,
		EventPlanFailed,
	}, types)
}

func TestEngine_UnsubscribedHandlerReceivesNothing(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	var calls int
	unsubscribe := engine.Subscribe(func(Event) { calls++ })
	unsubscribe()

	_, err := engine.CreatePlan("p", []StepRequest{writeRequest("A.md", "a")}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
}
