package consolidation

import (
	"context"
	"time"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence for consolidation runs and their results.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a consolidation repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// SelectUnconsolidated returns validated, never-consolidated orders in
// creation order, with their lines and line products loaded.
func (r *Repository) SelectUnconsolidated(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("status = ? AND consolidated_at IS NULL", enums.OrderStatusValidated).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateConsolidated inserts a consolidated order with its items.
func (r *Repository) CreateConsolidated(ctx context.Context, order *models.ConsolidatedOrder) (*models.ConsolidatedOrder, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].ConsolidatedOrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// StampSources marks the given source orders consolidated and completed.
// The predicate re-checks status and the unset timestamp so a concurrent
// run cannot claim the same orders; the row count reveals a lost race.
func (r *Repository) StampSources(ctx context.Context, orderIDs []uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ? AND status = ? AND consolidated_at IS NULL", orderIDs, enums.OrderStatusValidated).
		Updates(map[string]any{
			"consolidated_at": at,
			"status":          enums.OrderStatusCompleted,
		})
	return res.RowsAffected, res.Error
}

// ListConsolidated returns consolidated orders newest first, optionally
// scoped to a supplier.
func (r *Repository) ListConsolidated(ctx context.Context, supplierID *uuid.UUID) ([]models.ConsolidatedOrder, error) {
	q := r.db.WithContext(ctx).Model(&models.ConsolidatedOrder{}).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC")
	if supplierID != nil {
		q = q.Where("supplier_id = ?", *supplierID)
	}
	var out []models.ConsolidatedOrder
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindConsolidatedByID loads one consolidated order with items and products.
func (r *Repository) FindConsolidatedByID(ctx context.Context, id uuid.UUID) (*models.ConsolidatedOrder, error) {
	var order models.ConsolidatedOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
