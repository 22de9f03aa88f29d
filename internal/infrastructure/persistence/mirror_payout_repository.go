package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormPayoutRepository implements mirror.PayoutRepository using GORM.
// A payout and its breakdown lines are written in one transaction;
// re-saving replaces the full line set.
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// GetByRemoteID finds a payout mirror with its lines by remote id
func (r *GormPayoutRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Payout, error) {
	var model models.PayoutModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(lines), nil
}

// List finds payout mirrors matching the filter, newest settlement first
func (r *GormPayoutRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Payout, error) {
	var payoutModels []models.PayoutModel
	query := r.db.WithContext(ctx).
		Where("connector_id = ?", filter.ConnectorID).
		Order("settlement_date DESC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&payoutModels).Error; err != nil {
		return nil, err
	}

	payouts := make([]*mirror.Payout, len(payoutModels))
	for i := range payoutModels {
		lines, err := r.loadLines(ctx, payoutModels[i].ID)
		if err != nil {
			return nil, err
		}
		payouts[i] = payoutModels[i].ToDomain(lines)
	}
	return payouts, nil
}

// Save inserts or updates a payout and replaces its breakdown lines
func (r *GormPayoutRepository) Save(ctx context.Context, p *mirror.Payout) error {
	model := &models.PayoutModel{}
	lines := model.FromDomain(p)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PayoutLineModel{}, "payout_id = ?", model.ID).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormPayoutRepository) loadLines(ctx context.Context, payoutID uuid.UUID) ([]models.PayoutLineModel, error) {
	var lines []models.PayoutLineModel
	if err := r.db.WithContext(ctx).
		Where("payout_id = ?", payoutID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Ensure GormPayoutRepository implements mirror.PayoutRepository
var _ mirror.PayoutRepository = (*GormPayoutRepository)(nil)
