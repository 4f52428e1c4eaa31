package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingTier captures a volume discount threshold for a product.
// PercentOff is in [0,100].
type PricingTier struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:idx_pricing_tiers_product"`
	MinQty     int             `gorm:"column:min_qty;not null"`
	PercentOff decimal.Decimal `gorm:"column:percent_off;type:numeric(5,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
