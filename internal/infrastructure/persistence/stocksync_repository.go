package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/stocksync"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormMappingRepository implements stocksync.MappingRepository using GORM
type GormMappingRepository struct {
	db *gorm.DB
}

// NewGormMappingRepository creates a new GormMappingRepository
func NewGormMappingRepository(db *gorm.DB) *GormMappingRepository {
	return &GormMappingRepository{db: db}
}

// GetByID finds a mapping by its ID
func (r *GormMappingRepository) GetByID(ctx context.Context, id uuid.UUID) (*stocksync.LocationMapping, error) {
	var model models.LocationMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stocksync.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForCell resolves the mapping for a local product at a local
// location under one connector.
func (r *GormMappingRepository) FindForCell(ctx context.Context, connectorID, localProductID, localLocationID uuid.UUID) (*stocksync.LocationMapping, error) {
	var model models.LocationMappingModel
	if err := r.db.WithContext(ctx).
		Where("connector_id = ? AND local_product_id = ? AND local_location_id = ?",
			connectorID, localProductID, localLocationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stocksync.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds mappings matching the filter
func (r *GormMappingRepository) List(ctx context.Context, filter stocksync.MappingFilter) ([]*stocksync.LocationMapping, error) {
	var mappingModels []models.LocationMappingModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LocationMappingModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]*stocksync.LocationMapping, len(mappingModels))
	for i := range mappingModels {
		mappings[i] = mappingModels[i].ToDomain()
	}
	return mappings, nil
}

// Count counts mappings matching the filter
func (r *GormMappingRepository) Count(ctx context.Context, filter stocksync.MappingFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LocationMappingModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a mapping. A second mapping for the same cell is
// rejected.
func (r *GormMappingRepository) Create(ctx context.Context, m *stocksync.LocationMapping) error {
	model := models.LocationMappingModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return stocksync.ErrDuplicateMapping
		}
		return err
	}
	return nil
}

// Update persists changes to an existing mapping
func (r *GormMappingRepository) Update(ctx context.Context, m *stocksync.LocationMapping) error {
	model := models.LocationMappingModelFromDomain(m)
	result := r.db.WithContext(ctx).Model(&models.LocationMappingModel{}).
		Where("id = ?", model.ID).
		Select("remote_location_id", "is_active", "last_synced_qty", "last_sync_at", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return stocksync.ErrMappingNotFound
	}
	return nil
}

// Delete removes a mapping
func (r *GormMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LocationMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return stocksync.ErrMappingNotFound
	}
	return nil
}

func (r *GormMappingRepository) applyFilter(query *gorm.DB, filter stocksync.MappingFilter) *gorm.DB {
	if filter.ConnectorID != nil {
		query = query.Where("connector_id = ?", *filter.ConnectorID)
	}
	if filter.LocalProductID != nil {
		query = query.Where("local_product_id = ?", *filter.LocalProductID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// Ensure GormMappingRepository implements stocksync.MappingRepository
var _ stocksync.MappingRepository = (*GormMappingRepository)(nil)

// GormSyncLogRepository implements stocksync.LogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts one audit record
func (r *GormSyncLogRepository) Append(ctx context.Context, log *stocksync.SyncLog) error {
	model := models.StockSyncLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// List finds audit records matching the filter, newest first
func (r *GormSyncLogRepository) List(ctx context.Context, filter stocksync.LogFilter) ([]*stocksync.SyncLog, error) {
	var logModels []models.StockSyncLogModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockSyncLogModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("synced_at DESC")

	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]*stocksync.SyncLog, len(logModels))
	for i := range logModels {
		logs[i] = logModels[i].ToDomain()
	}
	return logs, nil
}

// Count counts audit records matching the filter
func (r *GormSyncLogRepository) Count(ctx context.Context, filter stocksync.LogFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockSyncLogModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteBefore prunes entries older than cutoff
func (r *GormSyncLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.StockSyncLogModel{}, "synced_at < ?", cutoff)
	return result.RowsAffected, result.Error
}

func (r *GormSyncLogRepository) applyFilter(query *gorm.DB, filter stocksync.LogFilter) *gorm.DB {
	if filter.ConnectorID != nil {
		query = query.Where("connector_id = ?", *filter.ConnectorID)
	}
	if filter.MappingID != nil {
		query = query.Where("mapping_id = ?", *filter.MappingID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormSyncLogRepository implements stocksync.LogRepository
var _ stocksync.LogRepository = (*GormSyncLogRepository)(nil)
