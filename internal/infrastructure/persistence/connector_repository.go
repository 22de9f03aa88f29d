package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormConnectorRepository implements connector.Repository using GORM
type GormConnectorRepository struct {
	db *gorm.DB
}

// NewGormConnectorRepository creates a new GormConnectorRepository
func NewGormConnectorRepository(db *gorm.DB) *GormConnectorRepository {
	return &GormConnectorRepository{db: db}
}

// GetByID finds a connector by its ID
func (r *GormConnectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*connector.Connector, error) {
	var model models.ConnectorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrConnectorNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByStoreID finds the connector linked to a remote store
func (r *GormConnectorRepository) GetByStoreID(ctx context.Context, storeID string) (*connector.Connector, error) {
	var model models.ConnectorModel
	if err := r.db.WithContext(ctx).First(&model, "store_id = ?", storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrConnectorNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds connectors matching the filter
func (r *GormConnectorRepository) List(ctx context.Context, filter connector.Filter) ([]*connector.Connector, error) {
	var connectorModels []models.ConnectorModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ConnectorModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&connectorModels).Error; err != nil {
		return nil, err
	}

	connectors := make([]*connector.Connector, len(connectorModels))
	for i := range connectorModels {
		connectors[i] = connectorModels[i].ToDomain()
	}
	return connectors, nil
}

// Count counts connectors matching the filter
func (r *GormConnectorRepository) Count(ctx context.Context, filter connector.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ConnectorModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new connector. A second connector for the same
// store is rejected.
func (r *GormConnectorRepository) Create(ctx context.Context, c *connector.Connector) error {
	model := models.ConnectorModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return connector.ErrStoreIDTaken
		}
		return err
	}
	return nil
}

// Update persists changes to an existing connector
func (r *GormConnectorRepository) Update(ctx context.Context, c *connector.Connector) error {
	model := models.ConnectorModelFromDomain(c)
	result := r.db.WithContext(ctx).Model(&models.ConnectorModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return connector.ErrConnectorNotFound
	}
	return nil
}

// Delete removes a connector. Records it owns are removed by the
// ON DELETE CASCADE constraints in the schema.
func (r *GormConnectorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ConnectorModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return connector.ErrConnectorNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormConnectorRepository) applyFilter(query *gorm.DB, filter connector.Filter) *gorm.DB {
	if filter.AuthStatus != nil && filter.AuthStatus.IsValid() {
		query = query.Where("auth_status = ?", *filter.AuthStatus)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR store_id ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormConnectorRepository implements connector.Repository
var _ connector.Repository = (*GormConnectorRepository)(nil)
