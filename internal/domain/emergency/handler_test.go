package emergency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
)

func newAuthedContext(e *echo.Echo, method, target, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_ToggleAndStatus(t *testing.T) {
	ctrl, _ := newTestController(600 * time.Second)
	h := NewHandler(ctrl)
	e := echo.New()

	c, rec := newAuthedContext(e, http.MethodPost, "/api/v1/emergency/toggle", "doctor_1")
	if err := h.Toggle(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Active {
		t.Error("expected active session after toggle")
	}
	if resp.RemainingSeconds != 600 {
		t.Errorf("expected 600 seconds remaining, got %d", resp.RemainingSeconds)
	}

	c, rec = newAuthedContext(e, http.MethodGet, "/api/v1/emergency/session", "doctor_1")
	if err := h.Status(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Active {
		t.Error("expected status to report active session")
	}
}

func TestHandler_Toggle_MissingIdentity(t *testing.T) {
	ctrl, _ := newTestController(600 * time.Second)
	h := NewHandler(ctrl)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/emergency/toggle", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Toggle(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
