package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/persistence/models"
)

// GormMirrorCustomerRepository implements mirror.CustomerRepository using GORM
type GormMirrorCustomerRepository struct {
	db *gorm.DB
}

// NewGormMirrorCustomerRepository creates a new GormMirrorCustomerRepository
func NewGormMirrorCustomerRepository(db *gorm.DB) *GormMirrorCustomerRepository {
	return &GormMirrorCustomerRepository{db: db}
}

// GetByRemoteID finds a customer mirror by its remote id under one connector
func (r *GormMirrorCustomerRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds customer mirrors matching the filter
func (r *GormMirrorCustomerRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.db.WithContext(ctx).Where("connector_id = ?", filter.ConnectorID)

	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR mobile ILIKE ?", pattern, pattern, pattern)
	}
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]*mirror.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = customerModels[i].ToDomain()
	}
	return customers, nil
}

// Save inserts or updates a customer mirror keyed by entity id
func (r *GormMirrorCustomerRepository) Save(ctx context.Context, c *mirror.Customer) error {
	model := &models.CustomerModel{}
	model.FromDomain(c)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormMirrorCustomerRepository implements mirror.CustomerRepository
var _ mirror.CustomerRepository = (*GormMirrorCustomerRepository)(nil)

// GormReverseReasonRepository implements mirror.ReverseReasonRepository using GORM
type GormReverseReasonRepository struct {
	db *gorm.DB
}

// NewGormReverseReasonRepository creates a new GormReverseReasonRepository
func NewGormReverseReasonRepository(db *gorm.DB) *GormReverseReasonRepository {
	return &GormReverseReasonRepository{db: db}
}

// GetByRemoteID finds a reverse reason mirror by its remote id under one connector
func (r *GormReverseReasonRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.ReverseReason, error) {
	var model models.ReverseReasonModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds reverse reason mirrors of one connector
func (r *GormReverseReasonRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.ReverseReason, error) {
	var reasonModels []models.ReverseReasonModel
	query := r.db.WithContext(ctx).
		Where("connector_id = ?", filter.ConnectorID).
		Order("usage_count DESC, name_primary ASC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&reasonModels).Error; err != nil {
		return nil, err
	}

	reasons := make([]*mirror.ReverseReason, len(reasonModels))
	for i := range reasonModels {
		reasons[i] = reasonModels[i].ToDomain()
	}
	return reasons, nil
}

// Save inserts or updates a reverse reason mirror keyed by entity id
func (r *GormReverseReasonRepository) Save(ctx context.Context, reason *mirror.ReverseReason) error {
	model := &models.ReverseReasonModel{}
	model.FromDomain(reason)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormReverseReasonRepository implements mirror.ReverseReasonRepository
var _ mirror.ReverseReasonRepository = (*GormReverseReasonRepository)(nil)

// GormAbandonedCartRepository implements mirror.AbandonedCartRepository using GORM
type GormAbandonedCartRepository struct {
	db *gorm.DB
}

// NewGormAbandonedCartRepository creates a new GormAbandonedCartRepository
func NewGormAbandonedCartRepository(db *gorm.DB) *GormAbandonedCartRepository {
	return &GormAbandonedCartRepository{db: db}
}

// GetByRemoteID finds an abandoned cart mirror by its remote id under one connector
func (r *GormAbandonedCartRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.AbandonedCart, error) {
	var model models.AbandonedCartModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds abandoned cart mirrors of one connector, newest first
func (r *GormAbandonedCartRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.AbandonedCart, error) {
	var cartModels []models.AbandonedCartModel
	query := r.db.WithContext(ctx).
		Where("connector_id = ?", filter.ConnectorID).
		Order("abandoned_at DESC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&cartModels).Error; err != nil {
		return nil, err
	}

	carts := make([]*mirror.AbandonedCart, len(cartModels))
	for i := range cartModels {
		carts[i] = cartModels[i].ToDomain()
	}
	return carts, nil
}

// Save inserts or updates an abandoned cart mirror keyed by entity id
func (r *GormAbandonedCartRepository) Save(ctx context.Context, a *mirror.AbandonedCart) error {
	model := &models.AbandonedCartModel{}
	model.FromDomain(a)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure GormAbandonedCartRepository implements mirror.AbandonedCartRepository
var _ mirror.AbandonedCartRepository = (*GormAbandonedCartRepository)(nil)

// GormWebhookSubscriptionRepository implements mirror.WebhookSubscriptionRepository using GORM
type GormWebhookSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormWebhookSubscriptionRepository creates a new GormWebhookSubscriptionRepository
func NewGormWebhookSubscriptionRepository(db *gorm.DB) *GormWebhookSubscriptionRepository {
	return &GormWebhookSubscriptionRepository{db: db}
}

// GetByRemoteID finds a webhook subscription by its remote id under one connector
func (r *GormWebhookSubscriptionRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.WebhookSubscription, error) {
	var model models.WebhookSubscriptionModel
	if err := r.db.WithContext(ctx).
		First(&model, "connector_id = ? AND remote_id = ?", connectorID, remoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mirror.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List finds webhook subscriptions of one connector
func (r *GormWebhookSubscriptionRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.WebhookSubscription, error) {
	var subModels []models.WebhookSubscriptionModel
	query := r.db.WithContext(ctx).
		Where("connector_id = ?", filter.ConnectorID).
		Order("event ASC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := query.Find(&subModels).Error; err != nil {
		return nil, err
	}

	subs := make([]*mirror.WebhookSubscription, len(subModels))
	for i := range subModels {
		subs[i] = subModels[i].ToDomain()
	}
	return subs, nil
}

// Save inserts or updates a webhook subscription keyed by entity id
func (r *GormWebhookSubscriptionRepository) Save(ctx context.Context, w *mirror.WebhookSubscription) error {
	model := &models.WebhookSubscriptionModel{}
	model.FromDomain(w)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return mirror.ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes a webhook subscription
func (r *GormWebhookSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WebhookSubscriptionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mirror.ErrNotFound
	}
	return nil
}

// Ensure GormWebhookSubscriptionRepository implements mirror.WebhookSubscriptionRepository
var _ mirror.WebhookSubscriptionRepository = (*GormWebhookSubscriptionRepository)(nil)
