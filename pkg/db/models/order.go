package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floramayor/floramayor-backend/pkg/enums"
)

// Order is the customer order aggregate. Items belong exclusively to the
// order and are removed with it. ConsolidatedAt is set exactly once, when a
// consolidation run picks the order up.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID     uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index:idx_orders_customer"`
	Customer       *User             `gorm:"foreignKey:CustomerID"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount       decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null"`
	Total          decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConsolidatedAt *time.Time        `gorm:"column:consolidated_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
