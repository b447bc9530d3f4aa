package outcomes

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthecon/healthecon/internal/platform/auth"
	"github.com/healthecon/healthecon/pkg/pagination"
)

type Handler struct {
	svc *Service
	imp *Importer
}

func NewHandler(svc *Service, imp *Importer) *Handler {
	return &Handler{svc: svc, imp: imp}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	read := auth.RequireRole("admin", "analyst", "operations")
	write := auth.RequireRole("admin", "analyst")

	g.GET("/outcome-categories", h.listCategories, read)
	g.POST("/outcome-categories", h.createCategory, write)

	g.GET("/outcomes", h.listOutcomes, read)
	g.POST("/outcomes", h.createOutcome, write)
	g.GET("/outcomes/:id", h.getOutcome, read)
	g.GET("/outcomes/:id/treatment-averages", h.treatmentAverages, read)

	g.GET("/treatments", h.listTreatments, read)
	g.POST("/treatments", h.createTreatment, write)
	g.GET("/treatments/:id", h.getTreatment, read)

	g.GET("/outcome-measurements", h.listMeasurements, read)
	g.POST("/outcome-measurements", h.createMeasurement, write)
	g.POST("/outcome-measurements/import", h.importMeasurements, write)
}

func (h *Handler) listCategories(c echo.Context) error {
	cats, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) createCategory(c echo.Context) error {
	var cat OutcomeCategory
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateCategory(c.Request().Context(), &cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) listOutcomes(c echo.Context) error {
	outs, err := h.svc.ListOutcomes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, outs)
}

func (h *Handler) createOutcome(c echo.Context) error {
	var o Outcome
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateOutcome(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) getOutcome(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid outcome id")
	}
	o, err := h.svc.GetOutcome(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "outcome not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) treatmentAverages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid outcome id")
	}
	avgs, err := h.svc.TreatmentAverages(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "outcome not found")
	}
	return c.JSON(http.StatusOK, avgs)
}

func (h *Handler) listTreatments(c echo.Context) error {
	p := pagination.FromContext(c)
	ts, total, err := h.svc.ListTreatments(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ts, total, p.Limit, p.Offset))
}

func (h *Handler) createTreatment(c echo.Context) error {
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateTreatment(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) getTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid treatment id")
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) listMeasurements(c echo.Context) error {
	var f MeasurementFilter
	for name, dst := range map[string]**uuid.UUID{
		"outcome_id":      &f.OutcomeID,
		"treatment_id":    &f.TreatmentID,
		"organization_id": &f.OrganizationID,
	} {
		if v := c.QueryParam(name); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
			}
			*dst = &id
		}
	}

	p := pagination.FromContext(c)
	ms, total, err := h.svc.ListMeasurements(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ms, total, p.Limit, p.Offset))
}

func (h *Handler) createMeasurement(c echo.Context) error {
	var m OutcomeMeasurement
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateMeasurement(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) importMeasurements(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not open uploaded file")
	}
	defer src.Close()

	res, err := h.imp.ImportMeasurements(c.Request().Context(), src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
