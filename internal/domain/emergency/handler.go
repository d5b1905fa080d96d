package emergency

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
)

type Handler struct {
	ctrl *Controller
}

func NewHandler(ctrl *Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/emergency", auth.RequireRole(auth.RoleDoctor, auth.RolePharmacy))
	g.POST("/toggle", h.Toggle)
	g.GET("/session", h.Status)
}

type sessionResponse struct {
	Session
	RemainingSeconds int `json:"remainingSeconds"`
}

func (h *Handler) Toggle(c echo.Context) error {
	actorID := auth.UserIDFromContext(c.Request().Context())
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	s := h.ctrl.Toggle(actorID)
	return c.JSON(http.StatusOK, sessionResponse{
		Session:          s,
		RemainingSeconds: int(h.ctrl.Remaining(actorID).Seconds()),
	})
}

func (h *Handler) Status(c echo.Context) error {
	actorID := auth.UserIDFromContext(c.Request().Context())
	if actorID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	s := h.ctrl.Status(actorID)
	return c.JSON(http.StatusOK, sessionResponse{
		Session:          s,
		RemainingSeconds: int(h.ctrl.Remaining(actorID).Seconds()),
	})
}
