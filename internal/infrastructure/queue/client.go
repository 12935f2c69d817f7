package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"library-backend/internal/shared"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client used by producers.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher turns domain events into asynq tasks.
type Publisher struct {
	client Enqueuer
}

func NewPublisher(client Enqueuer) *Publisher {
	return &Publisher{client: client}
}

func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
}

// PublishStockChanged enqueues a cache refresh for a book whose stock moved.
func (p *Publisher) PublishStockChanged(ctx context.Context, payload shared.StockChangedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal stock changed payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeInventoryStockChanged, body)
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueInventory),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeInventoryStockChanged, err)
	}
	return nil
}
