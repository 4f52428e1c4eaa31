package consolidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/floramayor/floramayor-backend/internal/pricing"
	"github.com/floramayor/floramayor-backend/pkg/db"
	"github.com/floramayor/floramayor-backend/pkg/db/models"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result is the outcome of a consolidation run.
type Result struct {
	ConsolidatedOrders []models.ConsolidatedOrder
	OrdersProcessed    int
}

// Service groups validated orders into per-supplier shipments.
type Service interface {
	Consolidate(ctx context.Context) (*Result, error)
	ListConsolidated(ctx context.Context, supplierID *uuid.UUID) ([]models.ConsolidatedOrder, error)
	GetConsolidated(ctx context.Context, id uuid.UUID) (*models.ConsolidatedOrder, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a consolidation service with the required dependencies.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consolidation repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// supplierGroup accumulates lines for one supplier in encounter order.
type supplierGroup struct {
	supplierID uuid.UUID
	products   []uuid.UUID
	items      map[uuid.UUID]*models.ConsolidatedOrderItem
}

// Consolidate picks up every validated, never-consolidated order, groups
// their lines by supplier then product, and writes one consolidated order
// per supplier. Source orders are stamped and flipped to COMPLETED in the
// same transaction; stock is not touched on this path, dispatch to the
// supplier is what fulfills these orders.
func (s *service) Consolidate(ctx context.Context) (*Result, error) {
	var result Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sources, err := repo.SelectUnconsolidated(ctx)
		if err != nil {
			return storeErr(err, "select orders for consolidation")
		}
		if len(sources) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing to consolidate")
		}

		groups, supplierOrder, err := groupBySupplier(sources)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created := make([]models.ConsolidatedOrder, 0, len(supplierOrder))
		for _, supplierID := range supplierOrder {
			group := groups[supplierID]
			items := make([]models.ConsolidatedOrderItem, 0, len(group.products))
			for _, productID := range group.products {
				items = append(items, *group.items[productID])
			}
			consolidated, err := repo.CreateConsolidated(ctx, &models.ConsolidatedOrder{
				SupplierID: supplierID,
				Items:      items,
				CreatedAt:  now,
			})
			if err != nil {
				return storeErr(err, "create consolidated order")
			}
			created = append(created, *consolidated)
		}

		ids := make([]uuid.UUID, len(sources))
		for i, src := range sources {
			ids[i] = src.ID
		}
		stamped, err := repo.StampSources(ctx, ids, now)
		if err != nil {
			return storeErr(err, "stamp source orders")
		}
		if stamped != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "orders were consolidated concurrently")
		}

		result.ConsolidatedOrders = created
		result.OrdersProcessed = len(sources)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) ListConsolidated(ctx context.Context, supplierID *uuid.UUID) ([]models.ConsolidatedOrder, error) {
	out, err := s.repo.ListConsolidated(ctx, supplierID)
	if err != nil {
		return nil, storeErr(err, "list consolidated orders")
	}
	return out, nil
}

func (s *service) GetConsolidated(ctx context.Context, id uuid.UUID) (*models.ConsolidatedOrder, error) {
	order, err := s.repo.FindConsolidatedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "consolidated order not found")
		}
		return nil, storeErr(err, "load consolidated order")
	}
	return order, nil
}

// groupBySupplier folds order lines into per-supplier, per-product totals.
// Encounter order is preserved on both levels and the first unit price seen
// for a product wins.
func groupBySupplier(sources []models.Order) (map[uuid.UUID]*supplierGroup, []uuid.UUID, error) {
	groups := make(map[uuid.UUID]*supplierGroup)
	var supplierOrder []uuid.UUID

	for _, src := range sources {
		for _, item := range src.Items {
			if item.Product == nil {
				return nil, nil, pkgerrors.New(pkgerrors.CodeInternal,
					fmt.Sprintf("order %s references missing product %s", src.ID, item.ProductID))
			}
			supplierID := item.Product.SupplierID

			group, ok := groups[supplierID]
			if !ok {
				group = &supplierGroup{
					supplierID: supplierID,
					items:      make(map[uuid.UUID]*models.ConsolidatedOrderItem),
				}
				groups[supplierID] = group
				supplierOrder = append(supplierOrder, supplierID)
			}

			agg, ok := group.items[item.ProductID]
			if !ok {
				agg = &models.ConsolidatedOrderItem{
					ProductID: item.ProductID,
					UnitPrice: item.UnitPrice,
				}
				group.items[item.ProductID] = agg
				group.products = append(group.products, item.ProductID)
			}
			agg.TotalQty += item.Qty
			agg.LineTotal = pricing.LineTotal(agg.UnitPrice, agg.TotalQty)
		}
	}
	return groups, supplierOrder, nil
}

func storeErr(err error, msg string) error {
	if db.IsTimeout(err) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
