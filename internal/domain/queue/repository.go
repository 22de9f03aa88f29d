package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/erp/zidsync/internal/domain/connector"
)

// Filter defines query criteria for listing queues
type Filter struct {
	ConnectorID *uuid.UUID
	ModelType   *ModelType
	Limit       int
	Offset      int
}

// Repository persists queues and their lines. Line updates are
// committed individually so one line's outcome survives regardless of
// what happens to its siblings.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Queue, error)
	List(ctx context.Context, filter Filter) ([]*Queue, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ListPending returns up to limit queues that still have draft or
	// failed lines, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Queue, error)

	Create(ctx context.Context, q *Queue) error
	Update(ctx context.Context, q *Queue) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SaveLine commits the state of a single line.
	SaveLine(ctx context.Context, line *Line) error

	// NextSequence reserves the next import sequence number for naming
	// queues of the given model type.
	NextSequence(ctx context.Context, connectorID uuid.UUID, modelType ModelType) (int64, error)

	// DeleteEmptyBefore removes queues with no lines created before cutoff.
	DeleteEmptyBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteCompletedBefore removes queues whose lines are all done and
	// that were last processed before cutoff.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LineHandler imports one line's payload. Implementations are
// registered per model type; the processor dispatches on Queue.ModelType.
type LineHandler interface {
	ModelType() ModelType
	HandleLine(ctx context.Context, conn *connector.Connector, line *Line) error
}

// HandlerRegistry resolves line handlers by model type
type HandlerRegistry struct {
	handlers map[ModelType]LineHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[ModelType]LineHandler)}
}

// Register adds a handler, replacing any previous one for the same type
func (r *HandlerRegistry) Register(h LineHandler) {
	r.handlers[h.ModelType()] = h
}

// Get resolves the handler for a model type
func (r *HandlerRegistry) Get(modelType ModelType) (LineHandler, error) {
	h, ok := r.handlers[modelType]
	if !ok {
		return nil, ErrNoHandler
	}
	return h, nil
}
