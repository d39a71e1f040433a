package server

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	checks := decode[HealthResponse](t, rec)
	if checks["sqlite"].Status != "ok" {
		t.Errorf("sqlite = %q, want ok", checks["sqlite"].Status)
	}
}
