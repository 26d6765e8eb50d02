package tenant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func newRouter(t *testing.T, f *fixture, identity tenant.IdentityFunc, opts ...tenant.MiddlewareOption) *chi.Mux {
	t.Helper()

	r := chi.NewRouter()
	r.Use(tenant.Middleware(f.resolver, identity, opts...))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))
		r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
			tctx := tenant.MustFromContext(req.Context())
			resp := map[string]string{"role": tctx.Role().String()}
			if id, ok := tctx.TenantID(); ok {
				resp["tenant_id"] = id.String()
			}
			if tctx.Unrestricted() {
				resp["unrestricted"] = "true"
			}
			_ = json.NewEncoder(w).Encode(resp)
		})
	})

	return r
}

func staticIdentity(id *tenant.Identity) tenant.IdentityFunc {
	return func(r *http.Request) *tenant.Identity { return id }
}

func doRequest(t *testing.T, h http.Handler, host, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if host != "" {
		req.Host = host
	}
	if header != "" {
		req.Header.Set(tenant.DefaultTenantHeader, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("explicit header resolves and scopes the request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.member))

		rec := doRequest(t, router, "", "acme")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, f.acme.ID.String(), body["tenant_id"])
		assert.Equal(t, "manager", body["role"])
	})

	t.Run("subdomain host resolves", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.member))

		rec := doRequest(t, router, "acme.base.example", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, f.acme.ID.String(), decodeBody(t, rec)["tenant_id"])
	})

	t.Run("rejection renders the error code with 403", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.nobody))

		rec := doRequest(t, router, "", "acme")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, tenant.CodeNotAMember, decodeBody(t, rec)["error"])
	})

	t.Run("malformed identifier renders 400", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.member))

		rec := doRequest(t, router, "", "not a slug!")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, tenant.CodeInvalidIdentifier, decodeBody(t, rec)["error"])
	})

	t.Run("ambiguous membership renders its code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.busy))

		rec := doRequest(t, router, "", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, tenant.CodeAmbiguousTenant, decodeBody(t, rec)["error"])
	})

	t.Run("no tenant passes through and RequireTenant blocks", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.nobody))

		rec := doRequest(t, router, "", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, tenant.CodeTenantRequired, decodeBody(t, rec)["error"])
	})

	t.Run("superuser passes RequireTenant unrestricted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.platOps))

		rec := doRequest(t, router, "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "true", decodeBody(t, rec)["unrestricted"])
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.busy), tenant.WithSkipPaths("/healthz"))

		// The ambiguous caller would otherwise be rejected.
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("custom header name", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		router := newRouter(t, f, staticIdentity(f.member), tenant.WithTenantHeader("X-Org"))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Org", "acme")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, f.acme.ID.String(), decodeBody(t, rec)["tenant_id"])
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		handler := func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "nope", http.StatusTeapot)
		}
		router := newRouter(t, f, staticIdentity(f.nobody), tenant.WithErrorHandler(handler))

		rec := doRequest(t, router, "", "acme")
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
