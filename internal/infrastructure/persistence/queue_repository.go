package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormQueueRepository implements queue.Repository using GORM.
// Queue rows and line rows live in separate tables; SaveLine commits a
// single line so one record's outcome is durable regardless of what
// happens to the rest of the batch.
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GormQueueRepository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// GetByID loads a queue with its lines in creation order
func (r *GormQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*queue.Queue, error) {
	var model models.QueueModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, queue.ErrQueueNotFound
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(lines), nil
}

// List finds queues matching the filter, newest first, with lines loaded
func (r *GormQueueRepository) List(ctx context.Context, filter queue.Filter) ([]*queue.Queue, error) {
	var queueModels []models.QueueModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.QueueModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&queueModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainWithLines(ctx, queueModels)
}

// Count counts queues matching the filter
func (r *GormQueueRepository) Count(ctx context.Context, filter queue.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.QueueModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListPending returns up to limit queues that still have draft or
// failed lines, oldest first.
func (r *GormQueueRepository) ListPending(ctx context.Context, limit int) ([]*queue.Queue, error) {
	var queueModels []models.QueueModel
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.QueueLineModel{}).
			Select("queue_id").
			Where("state IN ?", []queue.LineState{queue.LineDraft, queue.LineFailed})).
		Order("created_at ASC").
		Limit(limit).
		Find(&queueModels).Error
	if err != nil {
		return nil, err
	}
	return r.toDomainWithLines(ctx, queueModels)
}

// Create inserts a queue with its lines
func (r *GormQueueRepository) Create(ctx context.Context, q *queue.Queue) error {
	model := &models.QueueModel{}
	lines := model.FromDomain(q)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists the queue row and upserts its lines. Lines removed
// from the aggregate are not deleted; lines are append-only.
func (r *GormQueueRepository) Update(ctx context.Context, q *queue.Queue) error {
	model := &models.QueueModel{}
	lines := model.FromDomain(q)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QueueModel{}).
			Where("id = ?", model.ID).
			Select("name", "last_processed_at", "updated_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return queue.ErrQueueNotFound
		}
		for i := range lines {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a queue and its lines
func (r *GormQueueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.QueueLineModel{}, "queue_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.QueueModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return queue.ErrQueueNotFound
		}
		return nil
	})
}

// SaveLine commits the state of a single line
func (r *GormQueueRepository) SaveLine(ctx context.Context, line *queue.Line) error {
	model := models.QueueLineModelFromDomain(line)
	result := r.db.WithContext(ctx).Model(&models.QueueLineModel{}).
		Where("id = ?", model.ID).
		Select("state", "processed_at", "log").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return queue.ErrLineNotFound
	}
	return nil
}

// NextSequence reserves the next import sequence number for naming
// queues of the given model type.
func (r *GormQueueRepository) NextSequence(ctx context.Context, connectorID uuid.UUID, modelType queue.ModelType) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.ImportSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "connector_id = ? AND model_type = ?", connectorID, modelType).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.ImportSequenceModel{
				ConnectorID: connectorID,
				ModelType:   modelType,
				NextValue:   2,
			}
			next = 1
			return tx.Create(&seq).Error
		}
		if err != nil {
			return err
		}
		next = seq.NextValue
		return tx.Model(&models.ImportSequenceModel{}).
			Where("connector_id = ? AND model_type = ?", connectorID, modelType).
			Update("next_value", seq.NextValue+1).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// DeleteEmptyBefore removes queues with no lines created before cutoff
func (r *GormQueueRepository) DeleteEmptyBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Where("id NOT IN (?)", r.db.Model(&models.QueueLineModel{}).Select("queue_id")).
		Delete(&models.QueueModel{})
	return result.RowsAffected, result.Error
}

// DeleteCompletedBefore removes queues whose lines are all done and
// that were last processed before cutoff.
func (r *GormQueueRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		err := tx.Model(&models.QueueModel{}).
			Select("id").
			Where("last_processed_at < ?", cutoff).
			Where("id IN (?)", tx.Model(&models.QueueLineModel{}).Select("queue_id")).
			Where("id NOT IN (?)", tx.Model(&models.QueueLineModel{}).
				Select("queue_id").
				Where("state <> ?", queue.LineDone)).
			Find(&ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Delete(&models.QueueLineModel{}, "queue_id IN ?", ids).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.QueueModel{}, "id IN ?", ids)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *GormQueueRepository) applyFilter(query *gorm.DB, filter queue.Filter) *gorm.DB {
	if filter.ConnectorID != nil {
		query = query.Where("connector_id = ?", *filter.ConnectorID)
	}
	if filter.ModelType != nil && filter.ModelType.IsValid() {
		query = query.Where("model_type = ?", *filter.ModelType)
	}
	return query
}

func (r *GormQueueRepository) loadLines(ctx context.Context, queueID uuid.UUID) ([]models.QueueLineModel, error) {
	var lines []models.QueueLineModel
	if err := r.db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormQueueRepository) toDomainWithLines(ctx context.Context, queueModels []models.QueueModel) ([]*queue.Queue, error) {
	queues := make([]*queue.Queue, len(queueModels))
	for i := range queueModels {
		lines, err := r.loadLines(ctx, queueModels[i].ID)
		if err != nil {
			return nil, err
		}
		queues[i] = queueModels[i].ToDomain(lines)
	}
	return queues, nil
}

// Ensure GormQueueRepository implements queue.Repository
var _ queue.Repository = (*GormQueueRepository)(nil)
