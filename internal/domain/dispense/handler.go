package dispense

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
	"github.com/rxledger/rxledger/internal/platform/safety"
)

// EmergencyGauge reports whether the actor currently holds an active
// emergency session.
type EmergencyGauge interface {
	ActiveFor(actorID string) bool
}

// SafetyLookup resolves advisory information for a medicine name.
type SafetyLookup interface {
	Lookup(ctx context.Context, name string) safety.Info
}

type Handler struct {
	svc       *Service
	emergency EmergencyGauge
	safety    SafetyLookup
}

func NewHandler(svc *Service, emergency EmergencyGauge, safetyLookup SafetyLookup) *Handler {
	return &Handler{svc: svc, emergency: emergency, safety: safetyLookup}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	pharmacyGroup := api.Group("", auth.RequireRole(auth.RolePharmacy))
	pharmacyGroup.POST("/dispense", h.Dispense)
	pharmacyGroup.GET("/medicines/:name/safety", h.MedicineSafety)

	api.GET("/patients/:id/dispense-logs", h.ListByPatient,
		auth.RequireRole(auth.RoleDoctor, auth.RolePatient, auth.RolePharmacy))
}

type dispenseRequest struct {
	PrescriptionID string `json:"prescriptionId"`
	MedicineName   string `json:"medicineName"`
}

func (h *Handler) Dispense(c echo.Context) error {
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	pharmacyID := auth.UserIDFromContext(ctx)
	log, err := h.svc.Dispense(ctx, Request{
		PrescriptionID: req.PrescriptionID,
		MedicineName:   req.MedicineName,
		PharmacyID:     pharmacyID,
		PharmacyName:   auth.UserNameFromContext(ctx),
		Emergency:      h.emergency != nil && h.emergency.ActiveFor(pharmacyID),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPrescriptionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, ErrPrescriptionNotFound.Error())
		case errors.Is(err, ErrAlreadyDispensed):
			return echo.NewHTTPError(http.StatusConflict, ErrAlreadyDispensed.Error())
		case errors.Is(err, ErrMedicineNotOnPrescription):
			return echo.NewHTTPError(http.StatusNotFound, ErrMedicineNotOnPrescription.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, log)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	logs, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) MedicineSafety(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "medicine name is required")
	}
	return c.JSON(http.StatusOK, h.safety.Lookup(c.Request().Context(), name))
}
