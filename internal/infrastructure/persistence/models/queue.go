package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/erp/zidsync/internal/domain/queue"
)

// QueueModel is the persistence model for the import Queue aggregate.
type QueueModel struct {
	BaseModel

	ConnectorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(100);not null"`
	ModelType   queue.ModelType `gorm:"type:varchar(20);not null;index"`

	LastProcessedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (QueueModel) TableName() string {
	return "import_queues"
}

// QueueLineModel is the persistence model for one queue line.
type QueueLineModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	QueueID uuid.UUID `gorm:"type:uuid;not null;index"`

	RemoteID string `gorm:"type:varchar(100);not null"`
	Name     string `gorm:"type:varchar(255)"`
	Payload  string `gorm:"type:jsonb"`

	State       queue.LineState `gorm:"type:varchar(10);not null;default:'draft';index"`
	ProcessedAt *time.Time
	Log         string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (QueueLineModel) TableName() string {
	return "import_queue_lines"
}

// ToDomain converts the queue model and its lines to a domain Queue.
// Lines must be ordered by creation time.
func (m *QueueModel) ToDomain(lines []QueueLineModel) *queue.Queue {
	q := &queue.Queue{
		BaseEntity:      m.BaseModel.ToDomain(),
		ConnectorID:     m.ConnectorID,
		Name:            m.Name,
		ModelType:       m.ModelType,
		LastProcessedAt: m.LastProcessedAt,
	}
	for i := range lines {
		q.Lines = append(q.Lines, lines[i].ToDomain())
	}
	return q
}

// FromDomain populates the queue model from a domain Queue. Lines are
// returned separately since they are committed individually.
func (m *QueueModel) FromDomain(q *queue.Queue) []QueueLineModel {
	m.FromDomainBaseEntity(q.BaseEntity)
	m.ConnectorID = q.ConnectorID
	m.Name = q.Name
	m.ModelType = q.ModelType
	m.LastProcessedAt = q.LastProcessedAt

	lines := make([]QueueLineModel, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = QueueLineModelFromDomain(l)
	}
	return lines
}

// ToDomain converts a line model to a domain Line.
func (m *QueueLineModel) ToDomain() *queue.Line {
	l := &queue.Line{
		ID:          m.ID,
		QueueID:     m.QueueID,
		RemoteID:    m.RemoteID,
		Name:        m.Name,
		State:       m.State,
		ProcessedAt: m.ProcessedAt,
		Log:         m.Log,
		CreatedAt:   m.CreatedAt,
	}
	if m.Payload != "" {
		l.Payload = json.RawMessage(m.Payload)
	}
	return l
}

// QueueLineModelFromDomain creates a line model from a domain Line.
func QueueLineModelFromDomain(l *queue.Line) QueueLineModel {
	return QueueLineModel{
		ID:          l.ID,
		QueueID:     l.QueueID,
		RemoteID:    l.RemoteID,
		Name:        l.Name,
		Payload:     string(l.Payload),
		State:       l.State,
		ProcessedAt: l.ProcessedAt,
		Log:         l.Log,
		CreatedAt:   l.CreatedAt,
	}
}

// ImportSequenceModel backs the per-connector queue naming counters.
type ImportSequenceModel struct {
	ConnectorID uuid.UUID       `gorm:"type:uuid;primary_key"`
	ModelType   queue.ModelType `gorm:"type:varchar(20);primary_key"`
	NextValue   int64           `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (ImportSequenceModel) TableName() string {
	return "import_sequences"
}
