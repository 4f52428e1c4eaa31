package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsolidatedOrderItem aggregates one product across all source orders for
// a supplier. UnitPrice is copied from the first contributing order line.
type ConsolidatedOrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConsolidatedOrderID uuid.UUID       `gorm:"column:consolidated_order_id;type:uuid;not null;index:idx_consolidated_order_items_parent"`
	ProductID           uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product             *Product        `gorm:"foreignKey:ProductID"`
	TotalQty            int             `gorm:"column:total_qty;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal           decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}
