package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floramayor/floramayor-backend/api/middleware"
	ordersvc "github.com/floramayor/floramayor-backend/internal/orders"
	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
)

type stubOrdersService struct {
	createFn func(ctx context.Context, customerID uuid.UUID) (*models.Order, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn   func(ctx context.Context, filters ordersvc.ListFilters) ([]models.Order, error)
	addFn    func(ctx context.Context, orderID, productID uuid.UUID, qty int) (*models.Order, error)
	submitFn func(ctx context.Context, orderID, callerID uuid.UUID, callerRole enums.UserRole) (*models.Order, error)
}

func (s stubOrdersService) CreateOrder(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	return s.createFn(ctx, customerID)
}

func (s stubOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.getFn(ctx, id)
}

func (s stubOrdersService) ListOrders(ctx context.Context, filters ordersvc.ListFilters) ([]models.Order, error) {
	return s.listFn(ctx, filters)
}

func (s stubOrdersService) AddItem(ctx context.Context, orderID, productID uuid.UUID, qty int) (*models.Order, error) {
	return s.addFn(ctx, orderID, productID, qty)
}

func (s stubOrdersService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (s stubOrdersService) Submit(ctx context.Context, orderID, callerID uuid.UUID, callerRole enums.UserRole) (*models.Order, error) {
	return s.submitFn(ctx, orderID, callerID, callerRole)
}

func (s stubOrdersService) Approve(context.Context, uuid.UUID) (*models.Order, error)  { return nil, nil }
func (s stubOrdersService) Decline(context.Context, uuid.UUID) (*models.Order, error)  { return nil, nil }
func (s stubOrdersService) Reject(context.Context, uuid.UUID) (*models.Order, error)   { return nil, nil }
func (s stubOrdersService) Complete(context.Context, uuid.UUID) (*models.Order, error) { return nil, nil }
func (s stubOrdersService) DeleteOrder(context.Context, uuid.UUID) error               { return nil }

func withCaller(req *http.Request, caller middleware.Caller) *http.Request {
	return req.WithContext(middleware.WithCaller(req.Context(), caller))
}

func sampleOrder(customerID uuid.UUID, createdAt time.Time) models.Order {
	return models.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.OrderStatusDraft,
		Subtotal:   decimal.RequireFromString("10.00"),
		Discount:   decimal.Zero,
		Total:      decimal.RequireFromString("10.00"),
		CreatedAt:  createdAt,
	}
}

func TestListOrdersPinsCustomerToOwnOrders(t *testing.T) {
	customerID := uuid.New()

	svc := stubOrdersService{
		listFn: func(ctx context.Context, filters ordersvc.ListFilters) ([]models.Order, error) {
			if filters.CustomerID == nil || *filters.CustomerID != customerID {
				t.Fatalf("expected filters pinned to caller, got %v", filters.CustomerID)
			}
			return []models.Order{sampleOrder(customerID, time.Now())}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?customer_id="+uuid.NewString(), nil)
	req = withCaller(req, middleware.Caller{ID: customerID, Role: enums.UserRoleCustomer})
	resp := httptest.NewRecorder()
	ListOrders(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListOrdersEmitsNextCursorWhenPageOverflows(t *testing.T) {
	employeeID := uuid.New()
	now := time.Now().UTC()

	svc := stubOrdersService{
		listFn: func(ctx context.Context, filters ordersvc.ListFilters) ([]models.Order, error) {
			if filters.Limit != 2 {
				t.Fatalf("expected buffered limit 2, got %d", filters.Limit)
			}
			return []models.Order{
				sampleOrder(uuid.New(), now),
				sampleOrder(uuid.New(), now.Add(time.Second)),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=1", nil)
	req = withCaller(req, middleware.Caller{ID: employeeID, Role: enums.UserRoleEmployee})
	resp := httptest.NewRecorder()
	ListOrders(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Orders     []orderView `json:"orders"`
			NextCursor string      `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 {
		t.Fatalf("expected page trimmed to 1 order, got %d", len(envelope.Data.Orders))
	}
	if envelope.Data.NextCursor == "" {
		t.Fatalf("expected a next cursor for the overflowing page")
	}
}

func TestGetOrderForbidsOtherCustomers(t *testing.T) {
	owner := uuid.New()
	order := sampleOrder(owner, time.Now())

	svc := stubOrdersService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &order, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/orders/{orderId}", GetOrder(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil)
	req = withCaller(req, middleware.Caller{ID: uuid.New(), Role: enums.UserRoleCustomer})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAddOrderItemDecodesPayload(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()
	order := sampleOrder(customerID, time.Now())

	svc := stubOrdersService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &order, nil
		},
		addFn: func(ctx context.Context, orderID, gotProduct uuid.UUID, qty int) (*models.Order, error) {
			if orderID != order.ID {
				t.Fatalf("unexpected order id %s", orderID)
			}
			if gotProduct != productID {
				t.Fatalf("unexpected product id %s", gotProduct)
			}
			if qty != 60 {
				t.Fatalf("unexpected qty %d", qty)
			}
			return &order, nil
		},
	}

	r := chi.NewRouter()
	r.Put("/orders/{orderId}/items", AddOrderItem(svc, nil))

	body := `{"product_id":"` + productID.String() + `","qty":60}`
	req := httptest.NewRequest(http.MethodPut, "/orders/"+order.ID.String()+"/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withCaller(req, middleware.Caller{ID: customerID, Role: enums.UserRoleCustomer})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSubmitOrderPassesCaller(t *testing.T) {
	customerID := uuid.New()
	order := sampleOrder(customerID, time.Now())
	order.Status = enums.OrderStatusPendingValidation

	svc := stubOrdersService{
		submitFn: func(ctx context.Context, orderID, callerID uuid.UUID, callerRole enums.UserRole) (*models.Order, error) {
			if callerID != customerID {
				t.Fatalf("unexpected caller id %s", callerID)
			}
			if callerRole != enums.UserRoleCustomer {
				t.Fatalf("unexpected caller role %s", callerRole)
			}
			return &order, nil
		},
	}

	r := chi.NewRouter()
	r.Post("/orders/{orderId}/submit", SubmitOrder(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/submit", nil)
	req = withCaller(req, middleware.Caller{ID: customerID, Role: enums.UserRoleCustomer})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data orderView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusPendingValidation {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}
