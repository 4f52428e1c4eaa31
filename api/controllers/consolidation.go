package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/floramayor/floramayor-backend/api/middleware"
	"github.com/floramayor/floramayor-backend/api/responses"
	consolidationsvc "github.com/floramayor/floramayor-backend/internal/consolidation"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
)

// RunConsolidation groups every validated order into per-supplier shipments.
// The scheduled worker runs the same operation; this endpoint exists for
// on-demand runs by back-office staff.
func RunConsolidation(svc consolidationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Consolidate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"consolidated_orders": toConsolidatedViews(result.ConsolidatedOrders),
			"orders_processed":    result.OrdersProcessed,
		})
	}
}

// ListConsolidatedOrders returns shipment snapshots, newest first. Suppliers
// see only their own shipments.
func ListConsolidatedOrders(svc consolidationsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListConsolidated(r.Context(), supplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"consolidated_orders": toConsolidatedViews(list)})
	}
}

func GetConsolidatedOrder(svc consolidationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "consolidatedOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.GetConsolidated(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		caller, ok := middleware.CallerFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller context missing"))
			return
		}
		if caller.Role == enums.UserRoleSupplier && shipment.SupplierID != caller.ID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "shipment belongs to another supplier"))
			return
		}

		responses.WriteSuccess(w, toConsolidatedView(shipment))
	}
}
