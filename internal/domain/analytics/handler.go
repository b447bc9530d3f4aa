package analytics

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthecon/healthecon/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	read := auth.RequireRole("admin", "analyst", "pricing", "operations")
	generate := auth.RequireRole("admin", "analyst")

	g.GET("/analytics/cost-effectiveness", h.costEffectiveness, read)
	g.GET("/analytics/waste", h.waste, read)
	g.POST("/analytics/recommendations/generate", h.generate, generate)
	g.GET("/analytics/dashboard", h.dashboard, read)
}

func optionalUUID(c echo.Context, name string) (*uuid.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

func (h *Handler) costEffectiveness(c echo.Context) error {
	treatmentID, err := optionalUUID(c, "treatment_id")
	if err != nil {
		return err
	}
	outcomeID, err := optionalUUID(c, "outcome_id")
	if err != nil {
		return err
	}

	ratios, err := h.svc.CostEffectiveness(c.Request().Context(), treatmentID, outcomeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(ratios),
		"ratios": ratios,
	})
}

func (h *Handler) waste(c echo.Context) error {
	orgID, err := optionalUUID(c, "organization_id")
	if err != nil {
		return err
	}

	items, err := h.svc.Waste(c.Request().Context(), orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

func (h *Handler) generate(c echo.Context) error {
	orgID, err := optionalUUID(c, "organization_id")
	if err != nil {
		return err
	}

	recs, err := h.svc.GenerateRecommendations(c.Request().Context(), orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"created":         len(recs),
		"recommendations": recs,
	})
}

func (h *Handler) dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
