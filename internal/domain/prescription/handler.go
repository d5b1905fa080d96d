package prescription

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rxledger/rxledger/internal/platform/auth"
)

// EmergencyGauge reports whether the actor currently holds an active
// emergency session, so issued prescriptions can carry the override flag.
type EmergencyGauge interface {
	ActiveFor(actorID string) bool
}

type Handler struct {
	svc       *Service
	emergency EmergencyGauge
}

func NewHandler(svc *Service, emergency EmergencyGauge) *Handler {
	return &Handler{svc: svc, emergency: emergency}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.Issue, auth.RequireRole(auth.RoleDoctor))

	readGroup := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RolePatient, auth.RolePharmacy))
	readGroup.GET("/prescriptions/:id", h.GetByID)
	readGroup.GET("/patients/:id/prescriptions", h.ListByPatient)
}

type issueRequest struct {
	PatientID string     `json:"patientId"`
	Medicines []Medicine `json:"medicines"`
}

func (h *Handler) Issue(c echo.Context) error {
	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	doctorID := auth.UserIDFromContext(ctx)
	p := &Prescription{
		PatientID:   req.PatientID,
		DoctorID:    doctorID,
		DoctorName:  auth.UserNameFromContext(ctx),
		DoctorPhone: auth.UserPhoneFromContext(ctx),
		Emergency:   h.emergency != nil && h.emergency.ActiveFor(doctorID),
		Medicines:   req.Medicines,
	}
	if err := h.svc.Issue(ctx, p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetByID(c echo.Context) error {
	p, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	list, err := h.svc.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}
