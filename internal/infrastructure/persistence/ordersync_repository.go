package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements ordersync.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// GetByID finds an order mirror by its ID
func (r *GormOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*ordersync.RemoteOrder, error) {
	var model models.RemoteOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByRemoteID finds an order mirror by its remote id under one connector
func (r *GormOrderRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*ordersync.RemoteOrder, error) {
	var model models.RemoteOrderModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByLocalRef finds the order mirror linked to a local sales order
func (r *GormOrderRepository) GetByLocalRef(ctx context.Context, localRef string) (*ordersync.RemoteOrder, error) {
	var model models.RemoteOrderModel
	if err := r.db.WithContext(ctx).
		First(&model, "local_order_ref = ?", localRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds order mirrors matching the filter, newest first
func (r *GormOrderRepository) List(ctx context.Context, filter ordersync.OrderFilter) ([]*ordersync.RemoteOrder, error) {
	var orderModels []models.RemoteOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.RemoteOrderModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("ordered_at DESC")

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*ordersync.RemoteOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts order mirrors matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter ordersync.OrderFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.RemoteOrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or updates an order mirror keyed by entity id. A racing
// insert of the same remote order surfaces as ErrDuplicateOrder.
func (r *GormOrderRepository) Save(ctx context.Context, o *ordersync.RemoteOrder) error {
	model := models.RemoteOrderModelFromDomain(o)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return ordersync.ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter ordersync.OrderFilter) *gorm.DB {
	if filter.ConnectorID != nil {
		query = query.Where("connector_id = ?", *filter.ConnectorID)
	}
	if filter.Status != nil && filter.Status.IsValid() {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		query = query.Where("remote_id ILIKE ? OR order_code ILIKE ? OR customer_name ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormOrderRepository implements ordersync.OrderRepository
var _ ordersync.OrderRepository = (*GormOrderRepository)(nil)

// GormReverseRepository implements ordersync.ReverseRepository using GORM
type GormReverseRepository struct {
	db *gorm.DB
}

// NewGormReverseRepository creates a new GormReverseRepository
func NewGormReverseRepository(db *gorm.DB) *GormReverseRepository {
	return &GormReverseRepository{db: db}
}

// GetByID loads a reverse order with its items
func (r *GormReverseRepository) GetByID(ctx context.Context, id uuid.UUID) (*ordersync.ReverseOrder, error) {
	var model models.ReverseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ordersync.ErrReverseNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(items), nil
}

// List finds reverse orders matching the filter, newest first
func (r *GormReverseRepository) List(ctx context.Context, filter ordersync.ReverseFilter) ([]*ordersync.ReverseOrder, error) {
	var reverseModels []models.ReverseOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReverseOrderModel{}), filter)

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&reverseModels).Error; err != nil {
		return nil, err
	}

	reverses := make([]*ordersync.ReverseOrder, len(reverseModels))
	for i := range reverseModels {
		items, err := r.loadItems(ctx, reverseModels[i].ID)
		if err != nil {
			return nil, err
		}
		reverses[i] = reverseModels[i].ToDomain(items)
	}
	return reverses, nil
}

// Count counts reverse orders matching the filter
func (r *GormReverseRepository) Count(ctx context.Context, filter ordersync.ReverseFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReverseOrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a reverse order with its items
func (r *GormReverseRepository) Create(ctx context.Context, rev *ordersync.ReverseOrder) error {
	model := &models.ReverseOrderModel{}
	items := model.FromDomain(rev)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists the reverse order and replaces its items
func (r *GormReverseRepository) Update(ctx context.Context, rev *ordersync.ReverseOrder) error {
	model := &models.ReverseOrderModel{}
	items := model.FromDomain(rev)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ReverseOrderModel{}).
			Where("id = ?", model.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ordersync.ErrReverseNotFound
		}
		if err := tx.Delete(&models.ReverseItemModel{}, "reverse_order_id = ?", model.ID).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormReverseRepository) applyFilter(query *gorm.DB, filter ordersync.ReverseFilter) *gorm.DB {
	if filter.ConnectorID != nil {
		query = query.Where("connector_id = ?", *filter.ConnectorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *GormReverseRepository) loadItems(ctx context.Context, reverseOrderID uuid.UUID) ([]models.ReverseItemModel, error) {
	var items []models.ReverseItemModel
	if err := r.db.WithContext(ctx).
		Where("reverse_order_id = ?", reverseOrderID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Ensure GormReverseRepository implements ordersync.ReverseRepository
var _ ordersync.ReverseRepository = (*GormReverseRepository)(nil)
