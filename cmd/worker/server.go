package main

import (
	"context"

	"library-backend/internal/shared"
	"library-backend/pkg/container"
	"library-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// asynqServer wraps asynq.Server with logging around its lifecycle.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	cfg := c.Config
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueInventory: 10,
				shared.QueueDefault:   5,
			},
			Concurrency: cfg.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				logger.ErrorWithFields("Task failed", err, map[string]interface{}{
					"type":    task.Type(),
					"retried": retried,
				})
			}),
		},
	)

	go func() {
		logger.Info("Worker starting", map[string]interface{}{"concurrency": cfg.Queue.Concurrency})
		if err := srv.Run(mux); err != nil {
			logger.Fatal("Worker failed", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks up to asynq's ShutdownTimeout.
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
}
