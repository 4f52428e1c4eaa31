package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floramayor/floramayor-backend/api/middleware"
	"github.com/floramayor/floramayor-backend/api/responses"
	"github.com/floramayor/floramayor-backend/api/validators"
	productsvc "github.com/floramayor/floramayor-backend/internal/products"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
)

type tierRequest struct {
	MinQty     int    `json:"min_qty" validate:"required,min=1"`
	PercentOff string `json:"percent_off" validate:"required"`
}

type createProductRequest struct {
	SKU        string        `json:"sku" validate:"required"`
	Name       string        `json:"name" validate:"required"`
	BasePrice  string        `json:"base_price" validate:"required"`
	Stock      int           `json:"stock" validate:"min=0"`
	SupplierID *uuid.UUID    `json:"supplier_id,omitempty"`
	Tiers      []tierRequest `json:"tiers,omitempty" validate:"omitempty,dive"`
}

func (req createProductRequest) toInput(caller middleware.Caller) (productsvc.CreateProductInput, error) {
	price, err := parseMoney(req.BasePrice, "base_price")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	tiers, err := toTierInputs(req.Tiers)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	// Suppliers always list under themselves; employees must say whose
	// catalog they are editing.
	supplierID := caller.ID
	if caller.Role == enums.UserRoleEmployee {
		if req.SupplierID == nil {
			return productsvc.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
		}
		supplierID = *req.SupplierID
	}

	return productsvc.CreateProductInput{
		SKU:        validators.SanitizeString(req.SKU, 100),
		Name:       validators.SanitizeString(req.Name, 200),
		BasePrice:  price,
		Stock:      req.Stock,
		SupplierID: supplierID,
		Tiers:      tiers,
	}, nil
}

// CreateProduct lists a product in the supplier's catalog.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProductView(product))
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product))
	}
}

// ListProducts returns the catalog. Suppliers see only their own products;
// everyone else may narrow by the supplier_id query parameter.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}

		var supplierID *uuid.UUID
		if caller.Role == enums.UserRoleSupplier {
			id := caller.ID
			supplierID = &id
		} else if raw := strings.TrimSpace(r.URL.Query().Get("supplier_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_id"))
				return
			}
			supplierID = &id
		}

		products, err := svc.ListProducts(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": toProductViews(products)})
	}
}

type updateProductRequest struct {
	SKU       *string `json:"sku,omitempty"`
	Name      *string `json:"name,omitempty"`
	BasePrice *string `json:"base_price,omitempty"`
	Stock     *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
}

func (req updateProductRequest) toInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{Stock: req.Stock}
	if req.SKU != nil {
		sku := validators.SanitizeString(*req.SKU, 100)
		input.SKU = &sku
	}
	if req.Name != nil {
		name := validators.SanitizeString(*req.Name, 200)
		input.Name = &name
	}
	if req.BasePrice != nil {
		price, err := parseMoney(*req.BasePrice, "base_price")
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.BasePrice = &price
	}
	return input, nil
}

// UpdateProduct applies a partial update to name, price, or stock.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireProductOwnership(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product))
	}
}

type setTiersRequest struct {
	Tiers []tierRequest `json:"tiers" validate:"dive"`
}

// SetPricingTiers replaces the product's volume discount ladder.
func SetPricingTiers(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setTiersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tiers, err := toTierInputs(payload.Tiers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireProductOwnership(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetPricingTiers(r.Context(), id, tiers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product))
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireProductOwnership(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// requireProductOwnership blocks suppliers from mutating another supplier's
// product. Employees pass unconditionally.
func requireProductOwnership(r *http.Request, svc productsvc.Service, productID uuid.UUID) error {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing")
	}
	if caller.Role != enums.UserRoleSupplier {
		return nil
	}

	product, err := svc.GetProduct(r.Context(), productID)
	if err != nil {
		return err
	}
	if product.SupplierID != caller.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another supplier")
	}
	return nil
}

func toTierInputs(reqs []tierRequest) ([]productsvc.TierInput, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	out := make([]productsvc.TierInput, 0, len(reqs))
	for _, tier := range reqs {
		pct, err := parseMoney(tier.PercentOff, "percent_off")
		if err != nil {
			return nil, err
		}
		out = append(out, productsvc.TierInput{MinQty: tier.MinQty, PercentOff: pct})
	}
	return out, nil
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return value, nil
}
