package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/dago-libs/pkg/domain/state"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"go.uber.org/zap"
)

// memoryStateStore is an in-memory ports.StateStorage
type memoryStateStore struct {
	states   map[string]state.State
	failures int
	loads    int
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{states: make(map[string]state.State)}
}

func (m *memoryStateStore) Save(ctx context.Context, executionID string, st state.State) error {
	m.states[executionID] = st
	return nil
}

func (m *memoryStateStore) Load(ctx context.Context, executionID string) (state.State, error) {
	m.loads++
	if m.failures > 0 {
		m.failures--
		return nil, fmt.Errorf("failed to load state: %w: connection refused", ErrStateUnavailable)
	}
	st, ok := m.states[executionID]
	if !ok {
		return nil, fmt.Errorf("%w for execution %s", ErrStateNotFound, executionID)
	}
	return st, nil
}

func (m *memoryStateStore) Delete(ctx context.Context, executionID string) error {
	delete(m.states, executionID)
	return nil
}

func (m *memoryStateStore) Exists(ctx context.Context, executionID string) (bool, error) {
	_, ok := m.states[executionID]
	return ok, nil
}

func (m *memoryStateStore) SetTTL(ctx context.Context, executionID string, ttl time.Duration) error {
	return nil
}

func (m *memoryStateStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memoryStateStore) SaveState(ctx context.Context, st interface{}) error {
	id, stateMap, err := executionOf(st)
	if err != nil {
		return err
	}
	return m.Save(ctx, id, state.State(stateMap))
}

func (m *memoryStateStore) GetState(ctx context.Context, executionID string) (interface{}, error) {
	return m.Load(ctx, executionID)
}

func newTestRenderer(store *memoryStateStore, maxRetries int) *Renderer {
	r := NewRenderer(template.NewEngine(), store, maxRetries, zap.NewNop())
	r.backoff = time.Millisecond
	return r
}

func TestParseRenderJob(t *testing.T) {
	job, err := ParseRenderJob(map[string]interface{}{
		"data": `{"job_id":"j-1","execution_id":"exec-1","template":"{{name}}","data":{"name":"Ada"}}`,
	})
	if err != nil {
		t.Fatalf("ParseRenderJob failed: %v", err)
	}
	if job.JobID != "j-1" || job.ExecutionID != "exec-1" || job.Template != "{{name}}" {
		t.Errorf("unexpected job: %+v", job)
	}
	if job.Data["name"] != "Ada" {
		t.Errorf("unexpected job data: %v", job.Data)
	}

	tests := []struct {
		name   string
		values map[string]interface{}
		errMsg string
	}{
		{"missing data", map[string]interface{}{}, "'data' field"},
		{"data not a string", map[string]interface{}{"data": 42}, "'data' field"},
		{"invalid json", map[string]interface{}{"data": "{"}, "unmarshal"},
		{"missing job id", map[string]interface{}{"data": `{"template":"x"}`}, "job_id"},
		{"missing template", map[string]interface{}{"data": `{"job_id":"j"}`}, "template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRenderJob(tt.values)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not mention %q", err, tt.errMsg)
			}
		})
	}
}

func TestRendererWithState(t *testing.T) {
	store := newMemoryStateStore()
	store.states["exec-1"] = state.State{"status": "open", "owner": "ada"}

	r := newTestRenderer(store, 0)
	job := &RenderJob{
		JobID:       "j-1",
		ExecutionID: "exec-1",
		Template: `{{#switch status}}{{#case "open" "reopened" break=true}}Open for {{state.owner}}{{/case}}` +
			`{{#default}}Closed{{/default}}{{/switch}} ({{lang}})`,
		Data: map[string]interface{}{"lang": "en"},
	}

	result, err := r.Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Output != "Open for ada (en)" {
		t.Errorf("got %q", result.Output)
	}
	if result.JobID != "j-1" || result.ExecutionID != "exec-1" || result.ID == "" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
}

func TestRendererJobDataOverridesState(t *testing.T) {
	store := newMemoryStateStore()
	store.states["exec-1"] = state.State{"status": "open"}

	r := newTestRenderer(store, 0)
	result, err := r.Render(context.Background(), &RenderJob{
		JobID:       "j-1",
		ExecutionID: "exec-1",
		Template:    "{{status}}/{{state.status}}",
		Data:        map[string]interface{}{"status": "closed"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Output != "closed/open" {
		t.Errorf("got %q, want %q", result.Output, "closed/open")
	}
}

func TestRendererWithoutExecution(t *testing.T) {
	r := NewRenderer(template.NewEngine(), nil, 0, zap.NewNop())

	result, err := r.Render(context.Background(), &RenderJob{
		JobID:    "j-1",
		Template: `{{#ifEquals count 1}}one{{else}}many{{/ifEquals}}`,
		Data:     map[string]interface{}{"count": "1"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Output != "one" {
		t.Errorf("got %q, want %q", result.Output, "one")
	}

	_, err = r.Render(context.Background(), &RenderJob{JobID: "j-2", ExecutionID: "exec-1", Template: "x"})
	if err == nil {
		t.Error("expected error for execution without a state store")
	}
}

func TestRendererRetriesUnavailableState(t *testing.T) {
	store := newMemoryStateStore()
	store.states["exec-1"] = state.State{"name": "Ada"}
	store.failures = 2

	r := newTestRenderer(store, 3)
	result, err := r.Render(context.Background(), &RenderJob{JobID: "j-1", ExecutionID: "exec-1", Template: "{{name}}"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Output != "Ada" || result.Attempts != 3 {
		t.Errorf("got %q after %d attempts", result.Output, result.Attempts)
	}
}

func TestRendererGivesUp(t *testing.T) {
	store := newMemoryStateStore()
	store.failures = 10

	r := newTestRenderer(store, 2)
	_, err := r.Render(context.Background(), &RenderJob{JobID: "j-1", ExecutionID: "exec-1", Template: "x"})
	if !errors.Is(err, ErrStateUnavailable) {
		t.Fatalf("expected ErrStateUnavailable, got %v", err)
	}
	if store.loads != 3 {
		t.Errorf("loads = %d, want 3", store.loads)
	}
}

func TestRendererDoesNotRetryMissingState(t *testing.T) {
	store := newMemoryStateStore()

	r := newTestRenderer(store, 5)
	_, err := r.Render(context.Background(), &RenderJob{JobID: "j-1", ExecutionID: "missing", Template: "x"})
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
	if store.loads != 1 {
		t.Errorf("loads = %d, want 1", store.loads)
	}
}

func TestRendererStopsOnCancel(t *testing.T) {
	store := newMemoryStateStore()
	store.failures = 10

	r := newTestRenderer(store, 10)
	r.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, &RenderJob{JobID: "j-1", ExecutionID: "exec-1", Template: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRendererTemplateError(t *testing.T) {
	r := newTestRenderer(newMemoryStateStore(), 3)

	_, err := r.Render(context.Background(), &RenderJob{JobID: "j-1", Template: "{{#switch a}}"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "j-1") {
		t.Errorf("error should name the job: %v", err)
	}
}

func TestExecutionOf(t *testing.T) {
	id, _, err := executionOf(map[string]interface{}{"graph_id": "g-1"})
	if err != nil || id != "g-1" {
		t.Errorf("got %q, %v", id, err)
	}

	id, _, err = executionOf(map[string]interface{}{"execution_id": "e-1", "graph_id": "g-1"})
	if err != nil || id != "e-1" {
		t.Errorf("got %q, %v", id, err)
	}

	if _, _, err := executionOf("state"); err == nil {
		t.Error("expected error for non-map state")
	}
	if _, _, err := executionOf(map[string]interface{}{}); err == nil {
		t.Error("expected error for state without id")
	}
}
