package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsolidatedOrder is the per-supplier shipment snapshot produced by a
// consolidation run. It is immutable once created.
type ConsolidatedOrder struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID               `gorm:"column:supplier_id;type:uuid;not null;index:idx_consolidated_orders_supplier"`
	Supplier   *User                   `gorm:"foreignKey:SupplierID"`
	Items      []ConsolidatedOrderItem `gorm:"foreignKey:ConsolidatedOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
}
