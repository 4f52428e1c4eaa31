package middleware

import (
	"net/http"

	"github.com/floramayor/floramayor-backend/api/responses"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	callerIDHeader   = "X-Caller-Id"
	callerRoleHeader = "X-Caller-Role"
)

// Identity reads the caller id and role forwarded by the auth proxy and
// attaches them to the request context. Requests without a valid identity
// are rejected; token verification itself happens upstream.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			callerID, err := uuid.Parse(r.Header.Get(callerIDHeader))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing or invalid caller id"))
				return
			}
			role, err := enums.ParseUserRole(r.Header.Get(callerRoleHeader))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing or invalid caller role"))
				return
			}

			ctx = WithCaller(ctx, Caller{ID: callerID, Role: role})
			if logg != nil {
				ctx = logg.WithCallerID(ctx, callerID.String())
				ctx = logg.WithCallerRole(ctx, role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
