package planner

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zereraz/igne-sub002/pkg/toolcatalog"
)

type dispatchCall struct {
	CommandID string
	Source    string
	Args      []interface{}
}

// mockDispatcher records calls and fails on configured first arguments
type mockDispatcher struct {
	mu      sync.Mutex
	calls   []dispatchCall
	result  interface{}
	failArg map[string]error
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{
		result:  "ok",
		failArg: make(map[string]error),
	}
}

func (m *mockDispatcher) Execute(ctx context.Context, commandID, source string, args ...interface{}) (interface{}, error) {
	m.mu.Lock()
	m.calls = append(m.calls, dispatchCall{CommandID: commandID, Source: source, Args: args})
	m.mu.Unlock()

	if len(args) > 0 {
		if first, ok := args[0].(string); ok {
			if err := m.failArg[first]; err != nil {
				return nil, err
			}
		}
	}
	return m.result, nil
}

func (m *mockDispatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockReader serves diff side-reads from an in-memory file map
type mockReader struct {
	files map[string]string
}

func (m *mockReader) ReadResource(ctx context.Context, path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("not found: %s", path)
	}
	return content, nil
}

func newTestEngine(t *testing.T, d *mockDispatcher) *Engine {
	t.Helper()
	engine, err := NewEngine(Config{
		Catalog:    toolcatalog.NewVaultCatalog(),
		Dispatcher: d,
	})
	require.NoError(t, err)
	return engine
}

func writeRequest(path, content string) StepRequest {
	return StepRequest{
		ToolID:      "write_note",
		Description: "write " + path,
		Params:      map[string]interface{}{"path": path, "content": content},
	}
}

func readRequest(path string) StepRequest {
	return StepRequest{
		ToolID:      "read_note",
		Description: "read " + path,
		Params:      map[string]interface{}{"path": path},
	}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Config{Dispatcher: newMockDispatcher()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")

	_, err = NewEngine(Config{Catalog: toolcatalog.NewVaultCatalog()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatcher")
}

func TestCreatePlan(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	plan, err := engine.CreatePlan("daily notes", []StepRequest{
		readRequest("Inbox.md"),
		writeRequest("Daily.md", "# Today"),
	}, map[string]interface{}{"vault": "/tmp/vault"})

	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.NotEmpty(t, plan.TransactionID)
	assert.Equal(t, PlanStatusPending, plan.Status)
	assert.False(t, plan.CreatedAt.IsZero())
	assert.Nil(t, plan.StartedAt)
	assert.Equal(t, "daily notes", plan.Description)
	assert.Equal(t, map[string]interface{}{"vault": "/tmp/vault"}, plan.Context)

	require.Len(t, plan.Steps, 2)
	for _, step := range plan.Steps {
		assert.NotEmpty(t, step.ID)
		assert.Equal(t, StepStatusPending, step.Status)
	}
	// readonly mirrors the catalog's declared flag
	assert.True(t, plan.Steps[0].ReadOnly)
	assert.False(t, plan.Steps[1].ReadOnly)
}

func TestCreatePlan_UnknownTool(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	_, err := engine.CreatePlan("bad", []StepRequest{
		{ToolID: "summon_demon", Params: map[string]interface{}{"path": "x"}},
	}, nil)

	require.Error(t, err)
	var notFound *ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "summon_demon", notFound.ToolID)
	assert.Contains(t, err.Error(), "Tool not found")

	// nothing was stored
	assert.Empty(t, engine.ListPlans())
}

func TestCreatePlan_MissingParameter(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	_, err := engine.CreatePlan("bad", []StepRequest{
		{ToolID: "write_note", Params: map[string]interface{}{"path": "Note.md"}},
	}, nil)

	require.Error(t, err)
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "content", missing.Param)
	assert.Contains(t, err.Error(), "Missing required parameter")
	assert.Empty(t, engine.ListPlans())
}

func TestCreatePlan_InvalidParamType(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	_, err := engine.CreatePlan("bad", []StepRequest{
		{ToolID: "write_note", Params: map[string]interface{}{"path": "Note.md", "content": 42}},
	}, nil)

	require.Error(t, err)
	assert.Empty(t, engine.ListPlans())
}

func TestCreatePlan_OneBadStepFailsWholeCreation(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	_, err := engine.CreatePlan("partial", []StepRequest{
		writeRequest("Good.md", "fine"),
		{ToolID: "nope", Params: nil},
	}, nil)

	require.Error(t, err)
	assert.Empty(t, engine.ListPlans())
}

func TestGetPlan(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	plan, err := engine.CreatePlan("p", []StepRequest{readRequest("A.md")}, nil)
	require.NoError(t, err)

	got, err := engine.GetPlan(plan.ID)
	require.NoError(t, err)
	assert.Same(t, plan, got)

	_, err = engine.GetPlan("plan_missing")
	var notFound *PlanNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListPlans_MostRecentFirst(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	var created []*Plan
	for i := 0; i < 5; i++ {
		plan, err := engine.CreatePlan(fmt.Sprintf("plan %d", i), []StepRequest{readRequest("A.md")}, nil)
		require.NoError(t, err)
		created = append(created, plan)
	}

	listed := engine.ListPlans()
	require.Len(t, listed, 5)
	for i := 1; i < len(listed); i++ {
		assert.False(t, listed[i].CreatedAt.After(listed[i-1].CreatedAt),
			"plans must be ordered by creation time descending")
	}
	assert.Equal(t, created[len(created)-1].ID, listed[0].ID)
}

func TestDeletePlan(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	plan, err := engine.CreatePlan("p", []StepRequest{readRequest("A.md")}, nil)
	require.NoError(t, err)

	t.Run("unknown id reports false without error", func(t *testing.T) {
		deleted, err := engine.DeletePlan("plan_missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("executing plan cannot be deleted", func(t *testing.T) {
		plan.Status = PlanStatusExecuting
		deleted, err := engine.DeletePlan(plan.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPlanExecuting)
		assert.Contains(t, err.Error(), "cannot delete executing plan")
		assert.False(t, deleted)

		got, err := engine.GetPlan(plan.ID)
		require.NoError(t, err)
		assert.NotNil(t, got)
		plan.Status = PlanStatusPending
	})

	t.Run("delete removes the plan", func(t *testing.T) {
		deleted, err := engine.DeletePlan(plan.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = engine.GetPlan(plan.ID)
		var notFound *PlanNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestStats(t *testing.T) {
	engine := newTestEngine(t, newMockDispatcher())

	for i := 0; i < 3; i++ {
		_, err := engine.CreatePlan("p", []StepRequest{readRequest("A.md")}, nil)
		require.NoError(t, err)
	}

	stats := engine.Stats()
	assert.Equal(t, 3, stats.TotalPlans)
	assert.Equal(t, 3, stats.PendingPlans)
	assert.Equal(t, 0, stats.ApprovedPlans)
	assert.Equal(t, 0, stats.ExecutingPlans)
	assert.Equal(t, 0, stats.CompletedPlans)
	assert.Equal(t, 0, stats.FailedPlans)

	// stats reflect mutations immediately
	plans := engine.ListPlans()
	plans[0].Status = PlanStatusCompleted
	stats = engine.Stats()
	assert.Equal(t, 2, stats.PendingPlans)
	assert.Equal(t, 1, stats.CompletedPlans)
}
