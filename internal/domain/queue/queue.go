package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erp/zidsync/internal/domain/shared"
)

// ModelType identifies what kind of remote record a queue carries.
type ModelType string

const (
	ModelOrder    ModelType = "order"
	ModelProduct  ModelType = "product"
	ModelCustomer ModelType = "customer"
)

// IsValid checks if the model type is a known value
func (m ModelType) IsValid() bool {
	switch m {
	case ModelOrder, ModelProduct, ModelCustomer:
		return true
	}
	return false
}

// LineState is the processing state of one queue line.
type LineState string

const (
	LineDraft  LineState = "draft"
	LineDone   LineState = "done"
	LineFailed LineState = "failed"
)

// State is the derived state of a whole queue. It is never stored; it
// is recomputed from the line states on every read.
type State string

const (
	StateDraft   State = "draft"
	StateDone    State = "done"
	StateFailed  State = "failed"
	StatePartial State = "partial"
)

// DeriveState computes a queue's state from its line states.
// An empty queue is draft. All done is done, all failed is failed,
// any done among the rest is partial, otherwise draft.
func DeriveState(lines []LineState) State {
	if len(lines) == 0 {
		return StateDraft
	}
	var done, failed int
	for _, s := range lines {
		switch s {
		case LineDone:
			done++
		case LineFailed:
			failed++
		}
	}
	switch {
	case done == len(lines):
		return StateDone
	case failed == len(lines):
		return StateFailed
	case done > 0:
		return StatePartial
	default:
		return StateDraft
	}
}

// Counts summarizes line states for list views.
type Counts struct {
	Total  int
	Draft  int
	Done   int
	Failed int
}

// Line is one unit of queued work: a single remote record awaiting
// import. Failures are recorded on the line and never abort siblings.
type Line struct {
	ID      uuid.UUID
	QueueID uuid.UUID

	RemoteID string
	Name     string
	Payload  json.RawMessage

	State       LineState
	ProcessedAt *time.Time
	Log         string

	CreatedAt time.Time
}

// NewLine creates a draft line carrying one remote record payload
func NewLine(queueID uuid.UUID, remoteID, name string, payload json.RawMessage) (*Line, error) {
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Line{
		ID:        uuid.New(),
		QueueID:   queueID,
		RemoteID:  remoteID,
		Name:      name,
		Payload:   payload,
		State:     LineDraft,
		CreatedAt: time.Now(),
	}, nil
}

// MarkDone records a successful import of the line
func (l *Line) MarkDone(now time.Time) {
	l.State = LineDone
	l.ProcessedAt = &now
	l.Log = ""
}

// MarkFailed records a failed attempt with the cause. The line stays
// eligible for the next processing run.
func (l *Line) MarkFailed(now time.Time, cause string) {
	l.State = LineFailed
	l.ProcessedAt = &now
	l.Log = cause
}

// IsPending reports whether the line still needs processing
func (l *Line) IsPending() bool {
	return l.State == LineDraft || l.State == LineFailed
}

// Queue groups lines of one model type created by a single import run
// or webhook burst for one connector.
type Queue struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	Name        string
	ModelType   ModelType
	Lines       []*Line

	LastProcessedAt *time.Time
}

// NewQueue creates an empty queue. Name carries the import sequence
// reference, e.g. "ZID/ORDER/00042".
func NewQueue(connectorID uuid.UUID, name string, modelType ModelType) (*Queue, error) {
	if !modelType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelType, modelType)
	}
	return &Queue{
		BaseEntity:  shared.NewBaseEntity(),
		ConnectorID: connectorID,
		Name:        name,
		ModelType:   modelType,
	}, nil
}

// AddLine appends a draft line for one remote record
func (q *Queue) AddLine(remoteID, name string, payload json.RawMessage) (*Line, error) {
	line, err := NewLine(q.ID, remoteID, name, payload)
	if err != nil {
		return nil, err
	}
	q.Lines = append(q.Lines, line)
	return line, nil
}

// State derives the queue state from its lines
func (q *Queue) State() State {
	states := make([]LineState, len(q.Lines))
	for i, l := range q.Lines {
		states[i] = l.State
	}
	return DeriveState(states)
}

// Counts tallies line states
func (q *Queue) Counts() Counts {
	c := Counts{Total: len(q.Lines)}
	for _, l := range q.Lines {
		switch l.State {
		case LineDraft:
			c.Draft++
		case LineDone:
			c.Done++
		case LineFailed:
			c.Failed++
		}
	}
	return c
}

// PendingLines returns draft and failed lines in creation order
func (q *Queue) PendingLines() []*Line {
	var pending []*Line
	for _, l := range q.Lines {
		if l.IsPending() {
			pending = append(pending, l)
		}
	}
	return pending
}

// IsEmpty reports whether the queue has no lines
func (q *Queue) IsEmpty() bool {
	return len(q.Lines) == 0
}
