// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker subscribes to Redis Streams for render jobs, renders each job's
// Handlebars template against the execution state it references, and
// publishes the output back to a result stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	stateStore := worker.NewRedisStateStore(redisClient, cfg.StatePrefix, cfg.StateTTL, logger)
//	renderer := worker.NewRenderer(template.NewEngine(), stateStore, cfg.MaxRetries, logger)
//
//	w := worker.NewWorker(cfg, redisClient, renderer, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// A job message carries its payload as JSON in the "data" field:
//
//	{"job_id": "j-1", "execution_id": "exec-42", "template": "{{#switch status}}...{{/switch}}", "data": {"lang": "en"}}
//
// State fields are available to the template both at the top level and
// under "state"; job data overrides them.
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - Render job parsing and rendering
//   - Retrying renders while the state store is unavailable
//   - Result and error publishing
//   - Graceful shutdown
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8083, redisClient, engine, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
