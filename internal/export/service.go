package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/floramayor/floramayor-backend/pkg/db"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineExport is one projected order line. Money fields are rendered
// with two decimals for downstream consumers.
type OrderLineExport struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Qty       int       `json:"qty"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// OrderExport is the downstream projection of a single order.
type OrderExport struct {
	OrderID        uuid.UUID         `json:"order_id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	CustomerName   string            `json:"customer_name"`
	Status         string            `json:"status"`
	Lines          []OrderLineExport `json:"lines"`
	Subtotal       string            `json:"subtotal"`
	Discount       string            `json:"discount"`
	Total          string            `json:"total"`
	ConsolidatedAt *time.Time        `json:"consolidated_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ConsolidatedLineExport is one aggregated product on a supplier shipment.
type ConsolidatedLineExport struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	TotalQty  int       `json:"total_qty"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// ConsolidatedOrderExport is the downstream projection of one supplier
// shipment, including the grand total across its lines.
type ConsolidatedOrderExport struct {
	ConsolidatedOrderID uuid.UUID                `json:"consolidated_order_id"`
	SupplierID          uuid.UUID                `json:"supplier_id"`
	SupplierName        string                   `json:"supplier_name"`
	Lines               []ConsolidatedLineExport `json:"lines"`
	GrandTotal          string                   `json:"grand_total"`
	CreatedAt           time.Time                `json:"created_at"`
}

// ProductSalesRow is one product's totals over completed orders.
type ProductSalesRow struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	QtySold   int       `json:"qty_sold"`
	Revenue   string    `json:"revenue"`
}

// ProductSalesReport sums sales per product over completed orders.
type ProductSalesReport struct {
	Rows         []ProductSalesRow `json:"rows"`
	TotalQtySold int               `json:"total_qty_sold"`
	TotalRevenue string            `json:"total_revenue"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Service renders read-only projections for downstream reporting.
type Service interface {
	ExportOrder(ctx context.Context, id uuid.UUID) (*OrderExport, error)
	ExportConsolidatedOrder(ctx context.Context, id uuid.UUID) (*ConsolidatedOrderExport, error)
	ExportProductSalesReport(ctx context.Context) (*ProductSalesReport, error)
}

type service struct {
	repo *Repository
}

// NewService builds an export service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ExportOrder(ctx context.Context, id uuid.UUID) (*OrderExport, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, storeErr(err, "load order")
	}

	lines := make([]OrderLineExport, 0, len(order.Items))
	for _, item := range order.Items {
		line := OrderLineExport{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		}
		if item.Product != nil {
			line.SKU = item.Product.SKU
			line.Name = item.Product.Name
		}
		lines = append(lines, line)
	}

	out := &OrderExport{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Status:         order.Status.String(),
		Lines:          lines,
		Subtotal:       order.Subtotal.StringFixed(2),
		Discount:       order.Discount.StringFixed(2),
		Total:          order.Total.StringFixed(2),
		ConsolidatedAt: order.ConsolidatedAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.Customer != nil {
		out.CustomerName = order.Customer.Name
	}
	return out, nil
}

func (s *service) ExportConsolidatedOrder(ctx context.Context, id uuid.UUID) (*ConsolidatedOrderExport, error) {
	order, err := s.repo.FindConsolidatedOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consolidated order not found")
		}
		return nil, storeErr(err, "load consolidated order")
	}

	lines := make([]ConsolidatedLineExport, 0, len(order.Items))
	grandTotal := decimal.Zero
	for _, item := range order.Items {
		line := ConsolidatedLineExport{
			ProductID: item.ProductID,
			TotalQty:  item.TotalQty,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		}
		if item.Product != nil {
			line.SKU = item.Product.SKU
			line.Name = item.Product.Name
		}
		lines = append(lines, line)
		grandTotal = grandTotal.Add(item.LineTotal)
	}

	out := &ConsolidatedOrderExport{
		ConsolidatedOrderID: order.ID,
		SupplierID:          order.SupplierID,
		Lines:               lines,
		GrandTotal:          grandTotal.StringFixed(2),
		CreatedAt:           order.CreatedAt,
	}
	if order.Supplier != nil {
		out.SupplierName = order.Supplier.Name
	}
	return out, nil
}

func (s *service) ExportProductSalesReport(ctx context.Context) (*ProductSalesReport, error) {
	rows, err := s.repo.SalesByProduct(ctx)
	if err != nil {
		return nil, storeErr(err, "aggregate product sales")
	}

	report := &ProductSalesReport{
		Rows:        make([]ProductSalesRow, 0, len(rows)),
		GeneratedAt: time.Now().UTC(),
	}
	totalRevenue := decimal.Zero
	for _, row := range rows {
		report.Rows = append(report.Rows, ProductSalesRow{
			ProductID: row.ProductID,
			SKU:       row.SKU,
			Name:      row.Name,
			QtySold:   row.QtySold,
			Revenue:   row.Revenue.StringFixed(2),
		})
		report.TotalQtySold += row.QtySold
		totalRevenue = totalRevenue.Add(row.Revenue)
	}
	report.TotalRevenue = totalRevenue.StringFixed(2)
	return report, nil
}

func storeErr(err error, msg string) error {
	if db.IsTimeout(err) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
