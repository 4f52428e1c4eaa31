package orders

import (
	"context"

	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	"github.com/floramayor/floramayor-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilters narrows order listings. Limit and After drive keyset
// pagination; a zero Limit returns every matching row.
type ListFilters struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
	Limit      int
	After      *pagination.Cursor
}

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	FindItem(ctx context.Context, orderID, productID uuid.UUID) (*models.OrderItem, error)
	SaveItem(ctx context.Context, item *models.OrderItem) error
	DeleteItem(ctx context.Context, orderID, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, discount, total decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}
