package export

import (
	"context"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository exposes the read-only queries behind export projections.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an export repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrder loads an order with lines and line products for projection.
func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindConsolidatedOrder loads a consolidated order with items, products,
// and the receiving supplier.
func (r *Repository) FindConsolidatedOrder(ctx context.Context, id uuid.UUID) (*models.ConsolidatedOrder, error) {
	var order models.ConsolidatedOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Supplier").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// salesRow is the scan target for the per-product sales aggregation.
type salesRow struct {
	ProductID uuid.UUID       `gorm:"column:product_id"`
	SKU       string          `gorm:"column:sku"`
	Name      string          `gorm:"column:name"`
	QtySold   int             `gorm:"column:qty_sold"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
}

// SalesByProduct sums quantity and revenue per product over completed
// orders, busiest product first.
func (r *Repository) SalesByProduct(ctx context.Context) ([]salesRow, error) {
	var rows []salesRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("p.id AS product_id, p.sku AS sku, p.name AS name, SUM(oi.qty) AS qty_sold, SUM(oi.line_total) AS revenue").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.status = ?", enums.OrderStatusCompleted).
		Group("p.id, p.sku, p.name").
		Order("qty_sold DESC, name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
