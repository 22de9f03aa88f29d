package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormProductRepository implements mirror.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// GetByID finds a product mirror by its ID
func (r *GormProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*mirror.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByRemoteID finds a product mirror by its remote id under one connector
func (r *GormProductRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKU finds an active product mirror by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, connectorID uuid.UUID, sku string) (*mirror.Product, error) {
	return r.findByField(ctx, connectorID, "sku", sku)
}

// FindByBarcode finds an active product mirror by barcode
func (r *GormProductRepository) FindByBarcode(ctx context.Context, connectorID uuid.UUID, barcode string) (*mirror.Product, error) {
	return r.findByField(ctx, connectorID, "barcode", barcode)
}

// FindByName finds an active product mirror by either name variant
func (r *GormProductRepository) FindByName(ctx context.Context, connectorID uuid.UUID, name string) (*mirror.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("connector_id = ? AND active = ? AND (name_primary = ? OR name_secondary = ?)",
			connectorID, true, name, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) findByField(ctx context.Context, connectorID uuid.UUID, field, value string) (*mirror.Product, error) {
	if value == "" {
		return nil, mirror.ErrNotFound
	}
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("connector_id = ? AND active = ? AND "+field+" = ?", connectorID, true, value).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds product mirrors matching the filter
func (r *GormProductRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Product, error) {
	var productModels []models.ProductModel
	query := applyMirrorFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter,
		"name_primary ILIKE ? OR name_secondary ILIKE ? OR sku ILIKE ?", 3)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]*mirror.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// Count counts product mirrors matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter mirror.Filter) (int64, error) {
	var count int64
	query := applyMirrorFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter,
		"name_primary ILIKE ? OR name_secondary ILIKE ? OR sku ILIKE ?", 3)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or updates a product mirror keyed by entity id. A racing
// insert of the same remote id surfaces as ErrDuplicate.
func (r *GormProductRepository) Save(ctx context.Context, p *mirror.Product) error {
	model := models.ProductModelFromDomain(p)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteByConnector removes all product mirrors of one connector
func (r *GormProductRepository) DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ProductModel{}, "connector_id = ?", connectorID).Error
}

// Ensure GormProductRepository implements mirror.ProductRepository
var _ mirror.ProductRepository = (*GormProductRepository)(nil)

// applyMirrorFilter applies the shared mirror filter. searchClause is
// the dialect-specific search condition with argCount placeholders.
func applyMirrorFilter(query *gorm.DB, filter mirror.Filter, searchClause string, argCount int) *gorm.DB {
	query = query.Where("connector_id = ?", filter.ConnectorID)
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" && searchClause != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		args := make([]any, argCount)
		for i := range args {
			args[i] = pattern
		}
		query = query.Where(searchClause, args...)
	}
	return query
}
