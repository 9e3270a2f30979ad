package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/platform/internal/identity"
)

// newTestServer mounts the handler behind a middleware that injects the
// actor directly, standing in for the JWT middleware.
func newTestServer(f *fixture) *httptest.Server {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if role := req.Header.Get("X-Test-Role"); role != "" {
				actor := identity.Actor{Role: identity.Role(role)}
				_ = json.Unmarshal([]byte(req.Header.Get("X-Test-Actor")), &actor)
				req = req.WithContext(identity.WithActor(req.Context(), actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Mount("/appointments", NewHandler(f.service, nil).Routes())
	return httptest.NewServer(r)
}

func do(t *testing.T, srv *httptest.Server, method, path string, actor *identity.Actor, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if actor != nil {
		raw, err := json.Marshal(actor)
		require.NoError(t, err)
		req.Header.Set("X-Test-Role", string(actor.Role))
		req.Header.Set("X-Test-Actor", string(raw))
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func createBody(f *fixture) string {
	raw, _ := json.Marshal(map[string]string{
		"scheduled_date": "2026-03-01T10:00:00",
		"clinic_id":      f.clinicID.String(),
		"employee_id":    f.employee.ID.String(),
		"service_id":     f.svc.ID.String(),
		"notes":          "first visit",
	})
	return string(raw)
}

func TestHandlerCreate(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(f)
	defer srv.Close()

	resp, payload := do(t, srv, "POST", "/appointments", &f.customer, createBody(f))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "pending", payload["status"])
	require.Equal(t, "Downtown Clinic", payload["clinic_name"])

	// Same slot again: conflict.
	other := identity.Actor{ID: f.staff.ID, Role: identity.RoleCustomer}
	resp, payload = do(t, srv, "POST", "/appointments", &other, createBody(f))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "conflict", payload["kind"])
}

func TestHandlerCreateRejections(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(f)
	defer srv.Close()

	tests := []struct {
		name       string
		actor      *identity.Actor
		body       string
		wantStatus int
	}{
		{"no actor", nil, createBody(f), http.StatusForbidden},
		{"employee role", &f.staff, createBody(f), http.StatusForbidden},
		{"bad json", &f.customer, "{", http.StatusBadRequest},
		{"missing fields", &f.customer, `{"notes":"x"}`, http.StatusBadRequest},
		{"bad date", &f.customer, `{"scheduled_date":"tomorrow","clinic_id":"` + f.clinicID.String() + `","employee_id":"` + f.employee.ID.String() + `","service_id":"` + f.svc.ID.String() + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, srv, "POST", "/appointments", tt.actor, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandlerGet(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(f)
	defer srv.Close()
	created := f.book(t)

	resp, payload := do(t, srv, "GET", "/appointments/"+created.ID.String(), &f.customer, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, created.ID.String(), payload["id"])

	resp, _ = do(t, srv, "GET", "/appointments/"+created.ID.String(), &f.staff, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stranger := identity.Actor{ID: f.svc.ID, Role: identity.RoleCustomer}
	resp, payload = do(t, srv, "GET", "/appointments/"+created.ID.String(), &stranger, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "authorization", payload["kind"])

	resp, payload = do(t, srv, "GET", "/appointments/"+f.svc.ID.String(), &f.customer, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", payload["kind"])

	unassigned := identity.Actor{ID: f.svc.ID, Role: identity.RoleEmployee}
	resp, payload = do(t, srv, "GET", "/appointments/"+created.ID.String(), &unassigned, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "configuration", payload["kind"])
}

func TestHandlerList(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(f)
	defer srv.Close()
	f.book(t)

	resp, payload := do(t, srv, "GET", "/appointments", &f.customer, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	appointments, ok := payload["appointments"].([]any)
	require.True(t, ok)
	require.Len(t, appointments, 1)

	unassigned := identity.Actor{ID: f.svc.ID, Role: identity.RoleEmployee}
	resp, payload = do(t, srv, "GET", "/appointments", &unassigned, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "configuration", payload["kind"])
}

func TestHandlerUpdate(t *testing.T) {
	f := newFixture(t)
	srv := newTestServer(f)
	defer srv.Close()
	created := f.book(t)
	path := "/appointments/" + created.ID.String()

	// Customer reschedules while pending.
	resp, payload := do(t, srv, "PATCH", path, &f.customer, `{"scheduled_date":"2026-03-02T11:00:00","notes":"moved"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "moved", payload["notes"])

	// Customer-supplied status is rejected outright.
	resp, payload = do(t, srv, "PATCH", path, &f.customer, `{"status":"canceled"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "validation", payload["kind"])

	// Invalid enum value.
	resp, _ = do(t, srv, "PATCH", path, &f.staff, `{"status":"done"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Write-once reference fails the whole request.
	resp, _ = do(t, srv, "PATCH", path, &f.staff, `{"customer_id":"`+f.svc.ID.String()+`"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Employee drives the lifecycle forward.
	resp, payload = do(t, srv, "PATCH", path, &f.staff, `{"status":"process"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "process", payload["status"])

	// Customer locked out once processing.
	resp, payload = do(t, srv, "PATCH", path, &f.customer, `{"notes":"too late"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, payload["error"], "pending")

	// Illegal reverse transition.
	resp, _ = do(t, srv, "PATCH", path, &f.staff, `{"status":"pending"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown id.
	resp, _ = do(t, srv, "PATCH", "/appointments/"+f.svc.ID.String(), &f.staff, `{"notes":"x"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
