package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
)

// View types shape API payloads. Models stay persistence-only; money is
// rendered as fixed two-decimal strings.

type userView struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserViews(users []models.User) []userView {
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	return out
}

type pricingTierView struct {
	ID         uuid.UUID `json:"id"`
	MinQty     int       `json:"min_qty"`
	PercentOff string    `json:"percent_off"`
}

type productView struct {
	ID           uuid.UUID         `json:"id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	BasePrice    string            `json:"base_price"`
	Stock        int               `json:"stock"`
	SupplierID   uuid.UUID         `json:"supplier_id"`
	PricingTiers []pricingTierView `json:"pricing_tiers"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toProductView(p *models.Product) productView {
	tiers := make([]pricingTierView, 0, len(p.PricingTiers))
	for _, tier := range p.PricingTiers {
		tiers = append(tiers, pricingTierView{
			ID:         tier.ID,
			MinQty:     tier.MinQty,
			PercentOff: tier.PercentOff.StringFixed(2),
		})
	}
	return productView{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		BasePrice:    p.BasePrice.StringFixed(2),
		Stock:        p.Stock,
		SupplierID:   p.SupplierID,
		PricingTiers: tiers,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductViews(list []models.Product) []productView {
	out := make([]productView, 0, len(list))
	for i := range list {
		out = append(out, toProductView(&list[i]))
	}
	return out
}

type orderItemView struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

type orderView struct {
	ID             uuid.UUID         `json:"id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	Status         enums.OrderStatus `json:"status"`
	Subtotal       string            `json:"subtotal"`
	Discount       string            `json:"discount"`
	Total          string            `json:"total"`
	Items          []orderItemView   `json:"items"`
	ConsolidatedAt *time.Time        `json:"consolidated_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toOrderView(o *models.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemView{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return orderView{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Status:         o.Status,
		Subtotal:       o.Subtotal.StringFixed(2),
		Discount:       o.Discount.StringFixed(2),
		Total:          o.Total.StringFixed(2),
		Items:          items,
		ConsolidatedAt: o.ConsolidatedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func toOrderViews(list []models.Order) []orderView {
	out := make([]orderView, 0, len(list))
	for i := range list {
		out = append(out, toOrderView(&list[i]))
	}
	return out
}

type consolidatedItemView struct {
	ProductID uuid.UUID `json:"product_id"`
	TotalQty  int       `json:"total_qty"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

type consolidatedOrderView struct {
	ID         uuid.UUID              `json:"id"`
	SupplierID uuid.UUID              `json:"supplier_id"`
	Items      []consolidatedItemView `json:"items"`
	CreatedAt  time.Time              `json:"created_at"`
}

func toConsolidatedView(c *models.ConsolidatedOrder) consolidatedOrderView {
	items := make([]consolidatedItemView, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, consolidatedItemView{
			ProductID: item.ProductID,
			TotalQty:  item.TotalQty,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return consolidatedOrderView{
		ID:         c.ID,
		SupplierID: c.SupplierID,
		Items:      items,
		CreatedAt:  c.CreatedAt,
	}
}

func toConsolidatedViews(list []models.ConsolidatedOrder) []consolidatedOrderView {
	out := make([]consolidatedOrderView, 0, len(list))
	for i := range list {
		out = append(out, toConsolidatedView(&list[i]))
	}
	return out
}
