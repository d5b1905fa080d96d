package identity

import (
	"errors"
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
	adminGroup.POST("/users", h.RegisterProfessional)
	adminGroup.PATCH("/users/:id/status", h.SetStatus)
	adminGroup.GET("/users", h.ListByRole)

	api.GET("/users/:id", h.GetUser, auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RolePatient, auth.RolePharmacy))
	api.PUT("/patients/:id/caregiver", h.UpdateCaregiver, auth.RequireRole(auth.RolePatient))
	api.POST("/patients/find-or-create", h.FindOrCreatePatient, auth.RequireRole(auth.RoleDoctor, auth.RolePharmacy))
}

type registerRequest struct {
	Phone string  `json:"phone"`
	Name  string  `json:"name"`
	Role  Role    `json:"role"`
	Email *string `json:"email,omitempty"`
}

func (h *Handler) RegisterProfessional(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u := &User{Phone: req.Phone, Name: req.Name, Role: req.Role, Email: req.Email}
	if err := h.svc.RegisterProfessional(c.Request().Context(), u); err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			return echo.NewHTTPError(http.StatusConflict, ErrDuplicatePhone.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if u == nil {
		// Unknown id is not an error, nothing changed.
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListByRole(c echo.Context) error {
	role := Role(c.QueryParam("role"))
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListByRole(c.Request().Context(), role, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

type caregiverRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

func (h *Handler) UpdateCaregiver(c echo.Context) error {
	var req caregiverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateCaregiver(c.Request().Context(), c.Param("id"), req.Name, req.Phone, req.Relationship)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if u == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, u)
}

type findOrCreateRequest struct {
	Phone string `json:"phone"`
}

func (h *Handler) FindOrCreatePatient(c echo.Context) error {
	var req findOrCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.FindOrCreatePatient(c.Request().Context(), req.Phone)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}
