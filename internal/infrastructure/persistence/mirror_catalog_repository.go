package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormVariantRepository implements mirror.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// GetByRemoteID finds a variant mirror by its remote id under one connector
func (r *GormVariantRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByProduct returns all variants of one product mirror
func (r *GormVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*mirror.Variant, error) {
	var variantModels []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&variantModels).Error; err != nil {
		return nil, err
	}

	variants := make([]*mirror.Variant, len(variantModels))
	for i := range variantModels {
		variants[i] = variantModels[i].ToDomain()
	}
	return variants, nil
}

// Save inserts or updates a variant mirror keyed by entity id
func (r *GormVariantRepository) Save(ctx context.Context, v *mirror.Variant) error {
	model := &models.VariantModel{}
	model.FromDomain(v)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormVariantRepository implements mirror.VariantRepository
var _ mirror.VariantRepository = (*GormVariantRepository)(nil)

// GormAttributeRepository implements mirror.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// GetByRemoteID finds an attribute mirror by its remote id under one connector
func (r *GormAttributeRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Attribute, error) {
	var model models.AttributeModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds attribute mirrors of one connector
func (r *GormAttributeRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Attribute, error) {
	var attributeModels []models.AttributeModel
	query := r.db.WithContext(ctx).
		Where("connector_id = ?", filter.ConnectorID).
		Order("name_primary ASC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&attributeModels).Error; err != nil {
		return nil, err
	}

	attributes := make([]*mirror.Attribute, len(attributeModels))
	for i := range attributeModels {
		attributes[i] = attributeModels[i].ToDomain()
	}
	return attributes, nil
}

// Save inserts or updates an attribute mirror keyed by entity id
func (r *GormAttributeRepository) Save(ctx context.Context, a *mirror.Attribute) error {
	model := &models.AttributeModel{}
	model.FromDomain(a)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormAttributeRepository implements mirror.AttributeRepository
var _ mirror.AttributeRepository = (*GormAttributeRepository)(nil)

// GormLocationRepository implements mirror.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// GetByID finds a location mirror by its ID
func (r *GormLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*mirror.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByRemoteID finds a location mirror by its remote id under one connector
func (r *GormLocationRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetDefault returns the store's default inventory location
func (r *GormLocationRepository) GetDefault(ctx context.Context, connectorID uuid.UUID) (*mirror.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).
		Where("connector_id = ? AND is_default = ? AND active = ?", connectorID, true, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds location mirrors matching the filter
func (r *GormLocationRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Location, error) {
	var locationModels []models.LocationModel
	query := applyMirrorFilter(r.db.WithContext(ctx).Model(&models.LocationModel{}), filter, "", 0)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("is_default DESC, created_at ASC")

	if err := query.Find(&locationModels).Error; err != nil {
		return nil, err
	}

	locations := make([]*mirror.Location, len(locationModels))
	for i := range locationModels {
		locations[i] = locationModels[i].ToDomain()
	}
	return locations, nil
}

// Save inserts or updates a location mirror keyed by entity id
func (r *GormLocationRepository) Save(ctx context.Context, l *mirror.Location) error {
	model := &models.LocationModel{}
	model.FromDomain(l)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormLocationRepository implements mirror.LocationRepository
var _ mirror.LocationRepository = (*GormLocationRepository)(nil)
