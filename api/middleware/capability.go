package middleware

import (
	"net/http"

	"github.com/floramayor/floramayor-backend/api/responses"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
)

// Capability names one action the boundary can gate on.
type Capability string

const (
	CapOrdersCreate     Capability = "orders:create"
	CapOrdersEdit       Capability = "orders:edit"
	CapOrdersSubmit     Capability = "orders:submit"
	CapOrdersReview     Capability = "orders:review"
	CapOrdersComplete   Capability = "orders:complete"
	CapOrdersDelete     Capability = "orders:delete"
	CapOrdersRead       Capability = "orders:read"
	CapProductsManage   Capability = "products:manage"
	CapProductsRead     Capability = "products:read"
	CapUsersManage      Capability = "users:manage"
	CapUsersRead        Capability = "users:read"
	CapConsolidationRun Capability = "consolidation:run"
	CapShipmentsRead    Capability = "shipments:read"
	CapExportRead       Capability = "export:read"
)

// roleCapabilities is the static capability set per role. Ownership checks
// (a customer touching someone else's order) stay in the services; this
// gate only decides whether the action is available to the role at all.
var roleCapabilities = map[enums.UserRole]map[Capability]struct{}{
	enums.UserRoleCustomer: capSet(
		CapOrdersCreate, CapOrdersEdit, CapOrdersSubmit, CapOrdersRead,
		CapOrdersDelete, CapProductsRead,
	),
	enums.UserRoleEmployee: capSet(
		CapOrdersCreate, CapOrdersEdit, CapOrdersSubmit, CapOrdersReview,
		CapOrdersComplete, CapOrdersDelete, CapOrdersRead,
		CapProductsManage, CapProductsRead,
		CapUsersManage, CapUsersRead,
		CapConsolidationRun, CapShipmentsRead, CapExportRead,
	),
	enums.UserRoleSupplier: capSet(
		CapProductsManage, CapProductsRead, CapShipmentsRead,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role enums.UserRole, cap Capability) bool {
	set, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// RequireCapability rejects callers whose role does not grant the
// capability. It expects Identity to have run first.
func RequireCapability(cap Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required"))
				return
			}
			if !HasCapability(caller.Role, cap) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "caller role does not allow this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
