package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/floramayor/floramayor-backend/pkg/enums"
)

func TestIdentityAttachesCaller(t *testing.T) {
	callerID := uuid.New()

	var got Caller
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = CallerFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Caller-Id", callerID.String())
	req.Header.Set("X-Caller-Role", "employee")
	w := httptest.NewRecorder()

	Identity(nil)(next).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !ok {
		t.Fatalf("expected caller in context")
	}
	if got.ID != callerID {
		t.Fatalf("expected caller id %s, got %s", callerID, got.ID)
	}
	if got.Role != enums.UserRoleEmployee {
		t.Fatalf("expected employee role, got %s", got.Role)
	}
}

func TestIdentityRejectsMissingHeaders(t *testing.T) {
	cases := map[string]func(*http.Request){
		"no headers": func(r *http.Request) {},
		"bad id": func(r *http.Request) {
			r.Header.Set("X-Caller-Id", "not-a-uuid")
			r.Header.Set("X-Caller-Role", "customer")
		},
		"bad role": func(r *http.Request) {
			r.Header.Set("X-Caller-Id", uuid.NewString())
			r.Header.Set("X-Caller-Role", "superadmin")
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mutate(req)
			w := httptest.NewRecorder()

			Identity(nil)(next).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if called {
				t.Fatalf("next handler must not run without identity")
			}
		})
	}
}
