package consent

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/domain/emergency"
	"github.com/rxledger/rxledger/internal/domain/identity"
	"github.com/rxledger/rxledger/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consent/verify", h.Verify, auth.RequireRole(auth.RoleDoctor, auth.RolePharmacy))
}

type verifyRequest struct {
	Phone             string `json:"phone"`
	Code              string `json:"code"`
	EmergencyOverride bool   `json:"emergencyOverride"`
}

func (h *Handler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	actor := Actor{
		ID:   auth.UserIDFromContext(ctx),
		Name: auth.UserNameFromContext(ctx),
		Role: auth.PrimaryRoleFromContext(ctx),
	}
	patient, err := h.svc.VerifyConsent(ctx, actor, req.Phone, req.Code, req.EmergencyOverride)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidConsentCode):
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidConsentCode.Error())
		case errors.Is(err, emergency.ErrSessionExpired):
			return echo.NewHTTPError(http.StatusForbidden, emergency.ErrSessionExpired.Error())
		case errors.Is(err, emergency.ErrSessionInactive):
			return echo.NewHTTPError(http.StatusForbidden, emergency.ErrSessionInactive.Error())
		case errors.Is(err, identity.ErrUnverifiedAccount):
			return echo.NewHTTPError(http.StatusForbidden, identity.ErrUnverifiedAccount.Error())
		case errors.Is(err, identity.ErrNotFound):
			return echo.NewHTTPError(http.StatusForbidden, identity.ErrNotFound.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, patient)
}
