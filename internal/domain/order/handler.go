package order

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/orders", h.Place, auth.RequireRole(auth.RolePatient))
	api.GET("/pharmacies/:id/orders", h.ListPendingByPharmacy, auth.RequireRole(auth.RolePharmacy))
	api.GET("/patients/:id/orders", h.ListByPatient, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RolePharmacy))
}

type placeRequest struct {
	PrescriptionID string `json:"prescriptionId"`
	PharmacyID     string `json:"pharmacyId"`
}

func (h *Handler) Place(c echo.Context) error {
	var req placeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	o := &Order{
		PatientID:      auth.UserIDFromContext(ctx),
		PatientName:    auth.UserNameFromContext(ctx),
		PatientPhone:   auth.UserPhoneFromContext(ctx),
		PharmacyID:     req.PharmacyID,
		PrescriptionID: req.PrescriptionID,
	}
	if err := h.svc.Place(ctx, o); err != nil {
		switch {
		case errors.Is(err, ErrPrescriptionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrPrescriptionNotFound.Error())
		case errors.Is(err, ErrNoPendingMedicine):
			return echo.NewHTTPError(http.StatusConflict, ErrNoPendingMedicine.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListPendingByPharmacy(c echo.Context) error {
	orders, err := h.svc.ListPendingByPharmacy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	orders, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}
