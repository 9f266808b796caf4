package diagnostics

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/renalcare/renalcare/internal/platform/auth"
	"github.com/renalcare/renalcare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/lab-results", h.ListResults)
	g.GET("/lab-results/:id", h.GetResult)

	staff := g.Group("", auth.RequireRole("staff"))
	staff.POST("/lab-results", h.RecordResult)
	staff.DELETE("/lab-results/:id", h.DeleteResult)

	doctors := g.Group("", auth.RequireRole("doctor"))
	doctors.GET("/lab-results/report", h.FlagReport)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) RecordResult(c echo.Context) error {
	var lr LabResult
	if err := c.Bind(&lr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RecordResult(c.Request().Context(), &lr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, lr)
}

func (h *Handler) GetResult(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	lr, err := h.svc.GetResult(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab result not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load lab result")
	}
	if p.Role == "patient" {
		if p.Patient == nil || p.Patient.PatientID != lr.PatientID {
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
	return c.JSON(http.StatusOK, lr)
}

func (h *Handler) ListResults(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if p.Role == "patient" {
		if p.Patient == nil {
			return echo.NewHTTPError(http.StatusForbidden, "no linked patient record")
		}
		items, total, err := h.svc.ListResultsByPatient(ctx, p.Patient.PatientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	if patientID := c.QueryParam("patient_id"); patientID != "" {
		items, total, err := h.svc.ListResultsByPatient(ctx, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	items, total, err := h.svc.ListResults(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteResult(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteResult(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lab result not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) FlagReport(c echo.Context) error {
	report, err := h.svc.FlagReport(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build report")
	}
	return c.JSON(http.StatusOK, report)
}
