package controllers

import (
	"net/http"

	"github.com/floramayor/floramayor-backend/api/responses"
	exportsvc "github.com/floramayor/floramayor-backend/internal/export"
	"github.com/floramayor/floramayor-backend/pkg/logger"
)

// ExportOrder returns a customer-facing snapshot of one order.
func ExportOrder(svc exportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.ExportOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// ExportConsolidatedOrder returns a supplier-facing snapshot of one shipment.
func ExportConsolidatedOrder(svc exportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "consolidatedOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.ExportConsolidatedOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// ExportProductSalesReport aggregates completed order lines by product.
func ExportProductSalesReport(svc exportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.ExportProductSalesReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
