package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/queue"
)

// ProcessStats summarizes one processing run.
type ProcessStats struct {
	Queues int
	Done   int
	Failed int
}

// QueueProcessor drains pending import queues line by line. Each line's
// outcome is committed on its own: one bad payload marks its line
// failed and the rest of the queue keeps going. Only a disconnected
// store stops a queue early, since every remaining line would fail the
// same way.
type QueueProcessor struct {
	queues     queue.Repository
	connectors connector.Reader
	registry   *queue.HandlerRegistry
	logger     *zap.Logger
}

// NewQueueProcessor creates a new QueueProcessor
func NewQueueProcessor(queues queue.Repository, connectors connector.Reader, registry *queue.HandlerRegistry, logger *zap.Logger) *QueueProcessor {
	return &QueueProcessor{
		queues:     queues,
		connectors: connectors,
		registry:   registry,
		logger:     logger,
	}
}

// ProcessPending drains up to limit pending queues, oldest first.
func (p *QueueProcessor) ProcessPending(ctx context.Context, limit int) (ProcessStats, error) {
	var stats ProcessStats

	pending, err := p.queues.ListPending(ctx, limit)
	if err != nil {
		return stats, err
	}

	for _, q := range pending {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		done, failed := p.processQueue(ctx, q)
		stats.Queues++
		stats.Done += done
		stats.Failed += failed
	}
	return stats, nil
}

// ProcessQueue drains a single queue by id.
func (p *QueueProcessor) ProcessQueue(ctx context.Context, queueID uuid.UUID) (ProcessStats, error) {
	q, err := p.queues.GetByID(ctx, queueID)
	if err != nil {
		return ProcessStats{}, err
	}
	done, failed := p.processQueue(ctx, q)
	return ProcessStats{Queues: 1, Done: done, Failed: failed}, nil
}

func (p *QueueProcessor) processQueue(ctx context.Context, q *queue.Queue) (done, failed int) {
	log := p.logger.With(
		zap.String("queue", q.Name),
		zap.String("model_type", string(q.ModelType)))

	conn, err := p.connectors.GetByID(ctx, q.ConnectorID)
	if err != nil {
		log.Error("queue skipped: connector lookup failed", zap.Error(err))
		return 0, 0
	}
	handler, err := p.registry.Get(q.ModelType)
	if err != nil {
		log.Error("queue skipped: no handler", zap.Error(err))
		return 0, 0
	}

	for _, line := range q.PendingLines() {
		if ctx.Err() != nil {
			break
		}

		err := handler.HandleLine(ctx, conn, line)
		now := time.Now()
		if err != nil {
			line.MarkFailed(now, err.Error())
			failed++
			log.Warn("line failed",
				zap.String("remote_id", line.RemoteID),
				zap.Error(err))
		} else {
			line.MarkDone(now)
			done++
		}
		if saveErr := p.queues.SaveLine(ctx, line); saveErr != nil {
			log.Error("failed to persist line state",
				zap.String("remote_id", line.RemoteID),
				zap.Error(saveErr))
		}

		if errors.Is(err, connector.ErrNotConnected) {
			// Every remaining line would fail identically; leave them
			// pending for a run after the store is reconnected.
			log.Warn("queue halted: store not connected")
			break
		}
	}

	now := time.Now()
	q.LastProcessedAt = &now
	q.UpdatedAt = now
	if err := p.queues.Update(ctx, q); err != nil {
		log.Error("failed to persist queue", zap.Error(err))
	}

	log.Info("queue processed",
		zap.Int("done", done),
		zap.Int("failed", failed),
		zap.String("state", string(q.State())))
	return done, failed
}

// Cleanup prunes queues nothing will ever look at again: empty queues
// older than emptyAge and fully done queues last touched before
// completedAge.
func (p *QueueProcessor) Cleanup(ctx context.Context, emptyAge, completedAge time.Duration) (int64, error) {
	now := time.Now()

	emptied, err := p.queues.DeleteEmptyBefore(ctx, now.Add(-emptyAge))
	if err != nil {
		return 0, err
	}
	completed, err := p.queues.DeleteCompletedBefore(ctx, now.Add(-completedAge))
	if err != nil {
		return emptied, err
	}

	if emptied+completed > 0 {
		p.logger.Info("queues pruned",
			zap.Int64("empty", emptied),
			zap.Int64("completed", completed))
	}
	return emptied + completed, nil
}
