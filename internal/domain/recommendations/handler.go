package recommendations

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthecon/healthecon/internal/platform/auth"
	"github.com/healthecon/healthecon/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	read := auth.RequireRole("admin", "analyst", "pricing", "operations")
	write := auth.RequireRole("admin", "analyst")

	g.GET("/recommendation-types", h.listTypes, read)

	g.GET("/recommendations", h.listRecommendations, read)
	g.GET("/recommendations/:id", h.getRecommendation, read)
	g.DELETE("/recommendations/:id", h.deleteRecommendation, write)

	g.GET("/insights", h.listInsights, read)
	g.GET("/insights/:id", h.getInsight, read)
}

func (h *Handler) listTypes(c echo.Context) error {
	types, err := h.svc.ListTypes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, types)
}

func (h *Handler) listRecommendations(c echo.Context) error {
	var f RecommendationFilter
	if v := c.QueryParam("type_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid type_id")
		}
		f.TypeID = &id
	}
	if v := c.QueryParam("organization_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid organization_id")
		}
		f.OrganizationID = &id
	}

	p := pagination.FromContext(c)
	recs, total, err := h.svc.ListRecommendations(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, p.Limit, p.Offset))
}

func (h *Handler) getRecommendation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recommendation id")
	}
	rec, err := h.svc.GetRecommendation(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "recommendation not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) deleteRecommendation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recommendation id")
	}
	if err := h.svc.DeleteRecommendation(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "recommendation not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) getInsight(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid insight id")
	}
	insight, err := h.svc.GetInsight(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "insight not found")
	}
	return c.JSON(http.StatusOK, insight)
}

func (h *Handler) listInsights(c echo.Context) error {
	p := pagination.FromContext(c)
	insights, total, err := h.svc.ListInsights(c.Request().Context(), c.QueryParam("type"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(insights, total, p.Limit, p.Offset))
}
