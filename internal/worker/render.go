package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dago-libs/pkg/domain/state"
	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderJob represents a render work request
type RenderJob struct {
	JobID       string                 `json:"job_id"`
	ExecutionID string                 `json:"execution_id,omitempty"`
	Template    string                 `json:"template"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// RenderResult represents a rendered template
type RenderResult struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	ExecutionID string    `json:"execution_id,omitempty"`
	Output      string    `json:"output"`
	Attempts    int       `json:"attempts"`
	Timestamp   time.Time `json:"timestamp"`
}

// ParseRenderJob parses a render job from the values of a stream message
func ParseRenderJob(values map[string]interface{}) (*RenderJob, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var job RenderJob
	if err := json.Unmarshal([]byte(dataStr), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render job: %w", err)
	}

	if job.JobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}
	if job.Template == "" {
		return nil, fmt.Errorf("template is required")
	}

	return &job, nil
}

// Renderer renders jobs against their execution state
type Renderer struct {
	engine     *template.Engine
	stateStore ports.StateStorage
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewRenderer creates a new renderer. stateStore may be nil when jobs
// never reference an execution.
func NewRenderer(engine *template.Engine, stateStore ports.StateStorage, maxRetries int, logger *zap.Logger) *Renderer {
	return &Renderer{
		engine:     engine,
		stateStore: stateStore,
		maxRetries: maxRetries,
		backoff:    200 * time.Millisecond,
		logger:     logger,
	}
}

// Render renders a job, retrying state loads that fail transiently
func (r *Renderer) Render(ctx context.Context, job *RenderJob) (*RenderResult, error) {
	var (
		output string
		err    error
	)

	attempts := 0
	for {
		attempts++
		output, err = r.renderOnce(ctx, job)
		if err == nil || !errors.Is(err, ErrStateUnavailable) || attempts > r.maxRetries {
			break
		}

		r.logger.Warn("state unavailable, retrying render",
			zap.String("job_id", job.JobID),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff * time.Duration(attempts)):
		}
	}

	if err != nil {
		return nil, err
	}

	return &RenderResult{
		ID:          uuid.NewString(),
		JobID:       job.JobID,
		ExecutionID: job.ExecutionID,
		Output:      output,
		Attempts:    attempts,
		Timestamp:   time.Now().UTC(),
	}, nil
}

func (r *Renderer) renderOnce(ctx context.Context, job *RenderJob) (string, error) {
	var st state.State
	if job.ExecutionID != "" {
		if r.stateStore == nil {
			return "", fmt.Errorf("job references execution %s but no state store is configured", job.ExecutionID)
		}

		loaded, err := r.stateStore.Load(ctx, job.ExecutionID)
		if err != nil {
			return "", fmt.Errorf("failed to load state: %w", err)
		}
		st = loaded
	}

	output, err := r.engine.Render(job.Template, renderData(st, job.Data))
	if err != nil {
		return "", fmt.Errorf("failed to render job %s: %w", job.JobID, err)
	}

	return output, nil
}

// renderData builds the template data: state fields are available both
// flattened and under "state", job data overrides both
func renderData(st state.State, extra map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(st)+len(extra)+1)

	// Flatten state for easier access
	for key, value := range st {
		data[key] = value
	}
	if st != nil {
		data["state"] = map[string]interface{}(st)
	}

	for key, value := range extra {
		data[key] = value
	}

	return data
}
