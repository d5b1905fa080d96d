package consent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/domain/identity"
	"github.com/rxledger/rxledger/internal/platform/auth"
)

func actorContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consent/verify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, "doctor_1")
	ctx = context.WithValue(ctx, auth.UserNameKey, "Dr. Rao")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"doctor"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Verify(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)
	e := echo.New()

	c, rec := actorContext(e, `{"phone":"9998887777","code":"123456"}`)
	if err := h.Verify(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var patient identity.User
	json.Unmarshal(rec.Body.Bytes(), &patient)
	if patient.Phone != "9998887777" {
		t.Errorf("expected resolved patient, got %+v", patient)
	}
}

func TestHandler_Verify_BadCode(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)
	e := echo.New()

	c, _ := actorContext(e, `{"phone":"9998887777","code":"999999"}`)
	err := h.Verify(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Verify_OverrideWithoutSession(t *testing.T) {
	env := newTestEnv()
	h := NewHandler(env.svc)
	e := echo.New()

	c, _ := actorContext(e, `{"phone":"9998887777","emergencyOverride":true}`)
	err := h.Verify(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestHandler_Verify_OverrideWithSession(t *testing.T) {
	env := newTestEnv()
	env.ctrl.Toggle("doctor_1")
	h := NewHandler(env.svc)
	e := echo.New()

	c, rec := actorContext(e, `{"phone":"9998887777","emergencyOverride":true}`)
	if err := h.Verify(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(env.trail.entries) != 1 {
		t.Errorf("expected one audit entry, got %d", len(env.trail.entries))
	}
}
