package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormCategoryRepository implements mirror.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// GetByRemoteID finds a category mirror by its remote id under one connector
func (r *GormCategoryRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds category mirrors matching the filter, ordered by display
// path so parents read before their children.
func (r *GormCategoryRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Category, error) {
	var categoryModels []models.CategoryModel
	query := applyMirrorFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter,
		"name_primary ILIKE ? OR name_secondary ILIKE ? OR display_path ILIKE ?", 3)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("display_path ASC")

	if err := query.Find(&categoryModels).Error; err != nil {
		return nil, err
	}

	categories := make([]*mirror.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = categoryModels[i].ToDomain()
	}
	return categories, nil
}

// Count counts category mirrors matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter mirror.Filter) (int64, error) {
	var count int64
	query := applyMirrorFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter,
		"name_primary ILIKE ? OR name_secondary ILIKE ? OR display_path ILIKE ?", 3)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or updates a category mirror keyed by entity id
func (r *GormCategoryRepository) Save(ctx context.Context, c *mirror.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(c)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteByConnector removes all category mirrors of one connector
func (r *GormCategoryRepository) DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CategoryModel{}, "connector_id = ?", connectorID).Error
}

// Ensure GormCategoryRepository implements mirror.CategoryRepository
var _ mirror.CategoryRepository = (*GormCategoryRepository)(nil)
