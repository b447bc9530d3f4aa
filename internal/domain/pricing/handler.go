package pricing

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
	read := auth.RequireRole("admin", "pricing", "analyst")
	write := auth.RequireRole("admin", "pricing")

	g.GET("/drug-categories", h.listCategories, read)
	g.POST("/drug-categories", h.createCategory, write)

	g.GET("/drugs", h.listDrugs, read)
	g.POST("/drugs", h.createDrug, write)
	g.GET("/drugs/:id", h.getDrug, read)
	g.PUT("/drugs/:id", h.updateDrug, write)
	g.DELETE("/drugs/:id", h.deleteDrug, write)
	g.GET("/drugs/:id/price-trend", h.priceTrend, read)

	g.GET("/regions", h.listRegions, read)
	g.POST("/regions", h.createRegion, write)

	g.GET("/drug-prices", h.listPrices, read)
	g.POST("/drug-prices", h.createPrice, write)
	g.POST("/drug-prices/import", h.importPrices, write)
}

func (h *Handler) listCategories(c echo.Context) error {
	cats, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) createCategory(c echo.Context) error {
	var cat DrugCategory
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateCategory(c.Request().Context(), &cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) listDrugs(c echo.Context) error {
	p := pagination.FromContext(c)
	drugs, total, err := h.svc.ListDrugs(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(drugs, total, p.Limit, p.Offset))
}

func (h *Handler) createDrug(c echo.Context) error {
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateDrug(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) getDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid drug id")
	}
	d, err := h.svc.GetDrug(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "drug not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) updateDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid drug id")
	}
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateDrug(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) deleteDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid drug id")
	}
	if err := h.svc.DeleteDrug(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "drug not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) priceTrend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid drug id")
	}
	trend, err := h.svc.PriceTrend(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, trend)
}

func (h *Handler) listRegions(c echo.Context) error {
	regions, err := h.svc.ListRegions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, regions)
}

func (h *Handler) createRegion(c echo.Context) error {
	var r Region
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateRegion(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) listPrices(c echo.Context) error {
	p := pagination.FromContext(c)

	var f PriceFilter
	if v := c.QueryParam("drug_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid drug_id")
		}
		f.DrugID = &id
	}
	if v := c.QueryParam("region_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid region_id")
		}
		f.RegionID = &id
	}

	prices, total, err := h.svc.ListPrices(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prices, total, p.Limit, p.Offset))
}

func (h *Handler) createPrice(c echo.Context) error {
	var p DrugPrice
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePrice(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) importPrices(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not open uploaded file")
	}
	defer src.Close()

	res, err := h.imp.ImportPrices(c.Request().Context(), src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
