package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/dago-node-render/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Worker represents the render worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	renderer      *Renderer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	streamKey     string
	consumerGroup string
	resultStream  string
	errorStream   string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	renderer *Renderer,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		renderer:      renderer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		errorStream:   cfg.ErrorStream(),
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting render worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	// Start processing work
	w.wg.Add(1)
	go w.processWork()

	w.logger.Info("render worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight job to finish
func (w *Worker) Stop() error {
	w.logger.Info("stopping render worker", zap.String("worker_id", w.id))

	// Cancel context to stop work processing
	w.cancel()
	w.wg.Wait()

	w.logger.Info("render worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	// Try to create the group
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer w.wg.Done()
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			// Read from stream
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if err == redis.Nil || w.ctx.Err() != nil {
					// No messages available or shutting down
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			// Process each message
			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single render job message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing render job",
		zap.String("message_id", messageID),
	)

	// Parse the render job
	job, err := ParseRenderJob(message.Values)
	if err != nil {
		w.logger.Error("failed to parse render job",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	// Render the job
	result, err := w.renderer.Render(w.ctx, job)
	if err != nil {
		w.logger.Error("failed to render job",
			zap.String("message_id", messageID),
			zap.String("job_id", job.JobID),
			zap.String("execution_id", job.ExecutionID),
			zap.Error(err),
		)
		// Publish error event
		w.publishError(job, err)
	} else if err := w.publishResult(result); err != nil {
		w.logger.Error("failed to publish render result",
			zap.String("job_id", job.JobID),
			zap.Error(err),
		)
		w.publishError(job, err)
	}

	// Acknowledge the message
	w.acknowledgeMessage(messageID)
}

// publishResult publishes the rendered output
func (w *Worker) publishResult(result *RenderResult) error {
	if err := w.publish(w.resultStream, result); err != nil {
		return err
	}

	w.logger.Info("published render result",
		zap.String("job_id", result.JobID),
		zap.String("result_id", result.ID),
		zap.Int("output_bytes", len(result.Output)),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(job *RenderJob, err error) {
	errorEvent := map[string]interface{}{
		"job_id":       job.JobID,
		"execution_id": job.ExecutionID,
		"error":        err.Error(),
		"timestamp":    time.Now().UTC(),
	}

	// Publish error to a separate stream
	if publishErr := w.publish(w.errorStream, errorEvent); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// publish adds a JSON encoded payload to a stream
func (w *Worker) publish(stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Publish with a fresh context so results of an interrupted job still land
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}

	return nil
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
