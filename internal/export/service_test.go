package export

import (
	"context"
	"testing"
	"time"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupExportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  base_price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  supplier_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  consolidated_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS consolidated_orders (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS consolidated_order_items (
  id TEXT PRIMARY KEY,
  consolidated_order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  total_qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL
);`
	require.NoError(t, conn.Exec(schema).Error)
	for _, table := range []string{
		"consolidated_order_items", "consolidated_orders",
		"order_items", "orders", "products", "users",
	} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}

	return conn
}

type exportFixture struct {
	svc  Service
	conn *gorm.DB
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	conn := setupExportTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return &exportFixture{svc: svc, conn: conn}
}

func (f *exportFixture) seedUser(t *testing.T, name string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Name:         name,
		Role:         role,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func (f *exportFixture) seedProduct(t *testing.T, supplierID uuid.UUID, sku, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		SKU:        sku + "-" + uuid.NewString()[:8],
		Name:       name,
		BasePrice:  decimal.RequireFromString(price),
		Stock:      100,
		SupplierID: supplierID,
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func (f *exportFixture) seedOrder(t *testing.T, customerID uuid.UUID, status enums.OrderStatus, lines map[*models.Product]int) *models.Order {
	t.Helper()
	subtotal := decimal.Zero
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     status,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Total:      decimal.Zero,
	}
	require.NoError(t, f.conn.Create(order).Error)

	for product, qty := range lines {
		lineTotal := product.BasePrice.Mul(decimal.NewFromInt(int64(qty)))
		item := &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Qty:       qty,
			UnitPrice: product.BasePrice,
			LineTotal: lineTotal,
		}
		require.NoError(t, f.conn.Create(item).Error)
		subtotal = subtotal.Add(lineTotal)
	}
	require.NoError(t, f.conn.Model(order).Updates(map[string]any{
		"subtotal": subtotal,
		"total":    subtotal,
	}).Error)
	return order
}

func TestExportOrder(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()

	customer := f.seedUser(t, "Floristería Rosa", enums.UserRoleCustomer)
	supplier := f.seedUser(t, "Dutch Blooms BV", enums.UserRoleSupplier)
	tulip := f.seedProduct(t, supplier.ID, "TULP", "Red Tulip 40cm", "2.25")

	order := f.seedOrder(t, customer.ID, enums.OrderStatusValidated, map[*models.Product]int{tulip: 60})

	out, err := f.svc.ExportOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, out.OrderID)
	assert.Equal(t, "Floristería Rosa", out.CustomerName)
	assert.Equal(t, "validated", out.Status)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "Red Tulip 40cm", out.Lines[0].Name)
	assert.Equal(t, 60, out.Lines[0].Qty)
	assert.Equal(t, "2.25", out.Lines[0].UnitPrice)
	assert.Equal(t, "135.00", out.Lines[0].LineTotal)
	assert.Equal(t, "135.00", out.Subtotal)
	assert.Equal(t, "0.00", out.Discount)
	assert.Equal(t, "135.00", out.Total)

	_, err = f.svc.ExportOrder(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestExportConsolidatedOrderGrandTotal(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()

	supplier := f.seedUser(t, "Kenya Flora Ltd", enums.UserRoleSupplier)
	rose := f.seedProduct(t, supplier.ID, "ROSE", "White Rose 50cm", "3.00")
	lily := f.seedProduct(t, supplier.ID, "LILY", "Pink Lily 60cm", "4.50")

	consolidated := &models.ConsolidatedOrder{
		ID:         uuid.New(),
		SupplierID: supplier.ID,
		CreatedAt:  time.Now().UTC(),
		Items: []models.ConsolidatedOrderItem{
			{
				ID:        uuid.New(),
				ProductID: rose.ID,
				TotalQty:  30,
				UnitPrice: decimal.RequireFromString("3.00"),
				LineTotal: decimal.RequireFromString("90.00"),
			},
			{
				ID:        uuid.New(),
				ProductID: lily.ID,
				TotalQty:  10,
				UnitPrice: decimal.RequireFromString("4.50"),
				LineTotal: decimal.RequireFromString("45.00"),
			},
		},
	}
	require.NoError(t, f.conn.Create(consolidated).Error)

	out, err := f.svc.ExportConsolidatedOrder(ctx, consolidated.ID)
	require.NoError(t, err)

	assert.Equal(t, "Kenya Flora Ltd", out.SupplierName)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, "135.00", out.GrandTotal)

	_, err = f.svc.ExportConsolidatedOrder(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestExportProductSalesReportCountsCompletedOnly(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()

	customer := f.seedUser(t, "Floristería Rosa", enums.UserRoleCustomer)
	supplier := f.seedUser(t, "Dutch Blooms BV", enums.UserRoleSupplier)
	tulip := f.seedProduct(t, supplier.ID, "TULP", "Red Tulip 40cm", "2.00")
	rose := f.seedProduct(t, supplier.ID, "ROSE", "White Rose 50cm", "3.00")

	f.seedOrder(t, customer.ID, enums.OrderStatusCompleted, map[*models.Product]int{tulip: 10, rose: 5})
	f.seedOrder(t, customer.ID, enums.OrderStatusCompleted, map[*models.Product]int{tulip: 20})
	// Still in flight, must not show up in the report.
	f.seedOrder(t, customer.ID, enums.OrderStatusDraft, map[*models.Product]int{tulip: 99})

	report, err := f.svc.ExportProductSalesReport(ctx)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, tulip.ID, report.Rows[0].ProductID)
	assert.Equal(t, 30, report.Rows[0].QtySold)
	assert.Equal(t, "60.00", report.Rows[0].Revenue)
	assert.Equal(t, rose.ID, report.Rows[1].ProductID)
	assert.Equal(t, 5, report.Rows[1].QtySold)
	assert.Equal(t, "15.00", report.Rows[1].Revenue)

	assert.Equal(t, 35, report.TotalQtySold)
	assert.Equal(t, "75.00", report.TotalRevenue)
}
