package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
	"github.com/rxledger/rxledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.GET("/emergency/logs", h.List)
	adminGroup.GET("/patients/:id/emergency-logs", h.ListByPatient)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	logs, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(logs, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	logs, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, logs)
}
