package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/floramayor/floramayor-backend/internal/pricing"
	"github.com/floramayor/floramayor-backend/internal/products"
	"github.com/floramayor/floramayor-backend/internal/users"
	"github.com/floramayor/floramayor-backend/pkg/db"
	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the order lifecycle from draft to completion.
type Service interface {
	CreateOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters) ([]models.Order, error)
	AddItem(ctx context.Context, orderID, productID uuid.UUID, qty int) (*models.Order, error)
	RemoveItem(ctx context.Context, orderID, productID uuid.UUID) (*models.Order, error)
	Submit(ctx context.Context, orderID, callerID uuid.UUID, callerRole enums.UserRole) (*models.Order, error)
	Approve(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Decline(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Reject(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Complete(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo     Repository
	products *products.Repository
	users    *users.Repository
	tx       txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, productsRepo *products.Repository, usersRepo *users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: productsRepo, users: usersRepo, tx: tx}, nil
}

func (s *service) CreateOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	customer, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer does not exist")
		}
		return nil, storeErr(err, "load customer")
	}
	if customer.Role != enums.UserRoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders can only belong to customers")
	}

	order := &models.Order{
		CustomerID: customer.ID,
		Status:     enums.OrderStatusDraft,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Total:      decimal.Zero,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, storeErr(err, "create order")
	}
	return created, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, storeErr(err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	out, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, storeErr(err, "list orders")
	}
	return out, nil
}

// AddItem inserts or overwrites the order line for productID, re-pricing it
// against the product's current base price and tiers, and refreshes the
// order totals in the same transaction.
func (s *service) AddItem(ctx context.Context, orderID, productID uuid.UUID, qty int) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := findDraft(ctx, repo, orderID)
		if err != nil {
			return err
		}

		product, err := s.products.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return storeErr(err, "load product")
		}

		unitPrice, err := pricing.UnitPrice(product.BasePrice, qty, product.PricingTiers)
		if err != nil {
			return err
		}
		lineTotal := pricing.LineTotal(unitPrice, qty)

		item, err := repo.FindItem(ctx, order.ID, product.ID)
		switch {
		case err == nil:
			item.Qty = qty
			item.UnitPrice = unitPrice
			item.LineTotal = lineTotal
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Qty:       qty,
				UnitPrice: unitPrice,
				LineTotal: lineTotal,
			}
		default:
			return storeErr(err, "load order item")
		}
		if err := repo.SaveItem(ctx, item); err != nil {
			return storeErr(err, "save order item")
		}

		return recalculateTotals(ctx, repo, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// RemoveItem deletes the order line for productID and refreshes the totals
// in the same transaction.
func (s *service) RemoveItem(ctx context.Context, orderID, productID uuid.UUID) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := findDraft(ctx, repo, orderID)
		if err != nil {
			return err
		}

		removed, err := repo.DeleteItem(ctx, order.ID, productID)
		if err != nil {
			return storeErr(err, "delete order item")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not on the order")
		}

		return recalculateTotals(ctx, repo, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *service) Submit(ctx context.Context, orderID, callerID uuid.UUID, callerRole enums.UserRole) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if callerRole != enums.UserRoleEmployee && order.CustomerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owning customer or an employee may submit this order")
	}
	if order.Status != enums.OrderStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot be submitted while %s", order.Status))
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot submit empty order")
	}
	return s.transition(ctx, orderID, []enums.OrderStatus{enums.OrderStatusDraft}, enums.OrderStatusPendingValidation, "submitted")
}

func (s *service) Approve(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID,
		[]enums.OrderStatus{enums.OrderStatusPendingValidation},
		enums.OrderStatusValidated, "approved")
}

func (s *service) Decline(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID,
		[]enums.OrderStatus{enums.OrderStatusDraft, enums.OrderStatusPendingValidation},
		enums.OrderStatusDeclined, "declined")
}

func (s *service) Reject(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID,
		[]enums.OrderStatus{enums.OrderStatusPendingValidation, enums.OrderStatusValidated},
		enums.OrderStatusDraft, "rejected")
}

// Complete decrements stock for every line and flips the order to
// COMPLETED. The decrements and the status change are all-or-nothing: any
// shortfall rolls the whole transaction back.
func (s *service) Complete(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productsRepo := s.products.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return storeErr(err, "load order")
		}
		if order.Status != enums.OrderStatusValidated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot be completed while %s", order.Status))
		}

		for _, item := range order.Items {
			ok, err := productsRepo.DecrementStock(ctx, item.ProductID, item.Qty)
			if err != nil {
				return storeErr(err, "decrement stock")
			}
			if !ok {
				product, err := productsRepo.FindByID(ctx, item.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
					}
					return storeErr(err, "load product")
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %s: need %d, have %d", product.Name, item.Qty, product.Stock))
			}
		}

		moved, err := repo.UpdateStatus(ctx, order.ID,
			[]enums.OrderStatus{enums.OrderStatusValidated}, enums.OrderStatusCompleted)
		if err != nil {
			return storeErr(err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was completed concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// DeleteOrder removes the order and its items regardless of status.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, orderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return storeErr(err, "delete order")
	}
	return nil
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, verb string) (*models.Order, error) {
	moved, err := s.repo.UpdateStatus(ctx, orderID, from, to)
	if err != nil {
		return nil, storeErr(err, "update order status")
	}
	if !moved {
		order, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot be %s while %s", verb, order.Status))
	}
	return s.GetOrder(ctx, orderID)
}

func findDraft(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, storeErr(err, "load order")
	}
	if order.Status != enums.OrderStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is not editable while %s", order.Status))
	}
	return order, nil
}

func recalculateTotals(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	items, err := repo.ListItems(ctx, orderID)
	if err != nil {
		return storeErr(err, "list order items")
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	// Discount is reserved for order-level promotions and stays zero.
	discount := decimal.Zero
	total := subtotal.Sub(discount)
	if err := repo.UpdateTotals(ctx, orderID, subtotal, discount, total); err != nil {
		return storeErr(err, "update order totals")
	}
	return nil
}

func storeErr(err error, msg string) error {
	if db.IsTimeout(err) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
