package consolidation

import (
	"context"
	"testing"
	"time"

	"github.com/floramayor/floramayor-backend/pkg/db"
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

func setupConsolidationTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE IF NOT EXISTS pricing_tiers (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  min_qty INTEGER NOT NULL,
  percent_off NUMERIC NOT NULL,
  created_at DATETIME
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
		"order_items", "orders", "pricing_tiers", "products", "users",
	} {
		require.NoError(t, conn.Exec("DELETE FROM "+table).Error)
	}

	return conn
}

type consolidationFixture struct {
	svc  Service
	conn *gorm.DB
}

func newConsolidationFixture(t *testing.T) *consolidationFixture {
	t.Helper()
	conn := setupConsolidationTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	return &consolidationFixture{svc: svc, conn: conn}
}

func (f *consolidationFixture) seedSupplier(t *testing.T) uuid.UUID {
	t.Helper()
	supplier := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@supplier.example.com",
		Name:         "Supplier",
		Role:         enums.UserRoleSupplier,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, f.conn.Create(supplier).Error)
	return supplier.ID
}

func (f *consolidationFixture) seedProduct(t *testing.T, supplierID uuid.UUID, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		SKU:        uuid.NewString(),
		Name:       "Red Tulip 40cm",
		BasePrice:  decimal.RequireFromString(price),
		Stock:      1000,
		SupplierID: supplierID,
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

type lineSpec struct {
	product   *models.Product
	qty       int
	unitPrice string
}

func (f *consolidationFixture) seedValidatedOrder(t *testing.T, createdAt time.Time, lines ...lineSpec) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Status:     enums.OrderStatusValidated,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Total:      decimal.Zero,
		CreatedAt:  createdAt,
	}
	require.NoError(t, f.conn.Create(order).Error)

	for i, line := range lines {
		unitPrice := decimal.RequireFromString(line.unitPrice)
		item := &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Qty:       line.qty,
			UnitPrice: unitPrice,
			LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(line.qty))),
			CreatedAt: createdAt.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, f.conn.Create(item).Error)
	}
	return order
}

func TestConsolidateGroupsBySupplierAndProduct(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	supplierID := f.seedSupplier(t)
	product := f.seedProduct(t, supplierID, "2.00")

	base := time.Now().UTC().Add(-time.Hour)
	first := f.seedValidatedOrder(t, base, lineSpec{product, 10, "2.00"})
	second := f.seedValidatedOrder(t, base.Add(time.Minute), lineSpec{product, 20, "2.00"})

	result, err := f.svc.Consolidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.OrdersProcessed)
	require.Len(t, result.ConsolidatedOrders, 1)

	consolidated := result.ConsolidatedOrders[0]
	assert.Equal(t, supplierID, consolidated.SupplierID)
	require.Len(t, consolidated.Items, 1)
	assert.Equal(t, 30, consolidated.Items[0].TotalQty)
	assert.True(t, consolidated.Items[0].UnitPrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, consolidated.Items[0].LineTotal.Equal(decimal.RequireFromString("60.00")),
		"line total %s", consolidated.Items[0].LineTotal)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		var src models.Order
		require.NoError(t, f.conn.First(&src, "id = ?", id).Error)
		assert.Equal(t, enums.OrderStatusCompleted, src.Status)
		require.NotNil(t, src.ConsolidatedAt)
	}

	// Consolidation dispatches without touching stock.
	var reloaded models.Product
	require.NoError(t, f.conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 1000, reloaded.Stock)
}

func TestConsolidateSplitsPerSupplier(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	dutchID := f.seedSupplier(t)
	kenyanID := f.seedSupplier(t)
	tulip := f.seedProduct(t, dutchID, "2.00")
	rose := f.seedProduct(t, kenyanID, "3.50")

	base := time.Now().UTC().Add(-time.Hour)
	f.seedValidatedOrder(t, base,
		lineSpec{tulip, 10, "2.00"},
		lineSpec{rose, 5, "3.50"},
	)

	result, err := f.svc.Consolidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersProcessed)
	require.Len(t, result.ConsolidatedOrders, 2)

	// Suppliers appear in line encounter order.
	assert.Equal(t, dutchID, result.ConsolidatedOrders[0].SupplierID)
	assert.Equal(t, kenyanID, result.ConsolidatedOrders[1].SupplierID)
}

func TestConsolidateFirstUnitPriceWins(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	supplierID := f.seedSupplier(t)
	product := f.seedProduct(t, supplierID, "2.00")

	base := time.Now().UTC().Add(-time.Hour)
	// The older order snapshotted a higher price; its price wins.
	f.seedValidatedOrder(t, base, lineSpec{product, 10, "2.40"})
	f.seedValidatedOrder(t, base.Add(time.Minute), lineSpec{product, 20, "2.00"})

	result, err := f.svc.Consolidate(ctx)
	require.NoError(t, err)
	require.Len(t, result.ConsolidatedOrders, 1)
	require.Len(t, result.ConsolidatedOrders[0].Items, 1)

	item := result.ConsolidatedOrders[0].Items[0]
	assert.Equal(t, 30, item.TotalQty)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("2.40")))
	assert.True(t, item.LineTotal.Equal(decimal.RequireFromString("72.00")), "line total %s", item.LineTotal)
}

func TestConsolidateNothingToDo(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Consolidate(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestConsolidateIsIdempotent(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	supplierID := f.seedSupplier(t)
	product := f.seedProduct(t, supplierID, "2.00")
	f.seedValidatedOrder(t, time.Now().UTC().Add(-time.Hour), lineSpec{product, 10, "2.00"})

	_, err := f.svc.Consolidate(ctx)
	require.NoError(t, err)

	_, err = f.svc.Consolidate(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	var count int64
	require.NoError(t, f.conn.Model(&models.ConsolidatedOrder{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "re-running must not duplicate consolidated orders")
}

func TestListAndGetConsolidated(t *testing.T) {
	f := newConsolidationFixture(t)
	ctx := context.Background()

	dutchID := f.seedSupplier(t)
	kenyanID := f.seedSupplier(t)
	tulip := f.seedProduct(t, dutchID, "2.00")
	rose := f.seedProduct(t, kenyanID, "3.50")

	f.seedValidatedOrder(t, time.Now().UTC().Add(-time.Hour),
		lineSpec{tulip, 10, "2.00"},
		lineSpec{rose, 5, "3.50"},
	)
	result, err := f.svc.Consolidate(ctx)
	require.NoError(t, err)
	require.Len(t, result.ConsolidatedOrders, 2)

	all, err := f.svc.ListConsolidated(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := f.svc.ListConsolidated(ctx, &dutchID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, dutchID, scoped[0].SupplierID)

	loaded, err := f.svc.GetConsolidated(ctx, result.ConsolidatedOrders[0].ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Items[0].Product)

	_, err = f.svc.GetConsolidated(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
