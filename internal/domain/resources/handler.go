package resources

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
	read := auth.RequireRole("admin", "operations", "analyst")
	write := auth.RequireRole("admin", "operations")

	g.GET("/organizations", h.listOrganizations, read)
	g.POST("/organizations", h.createOrganization, write)
	g.GET("/organizations/:id", h.getOrganization, read)
	g.PUT("/organizations/:id", h.updateOrganization, write)
	g.DELETE("/organizations/:id", h.deleteOrganization, write)
	g.GET("/organizations/:id/departments", h.listDepartments, read)
	g.POST("/departments", h.createDepartment, write)

	g.GET("/resource-categories", h.listResourceCategories, read)
	g.POST("/resource-categories", h.createResourceCategory, write)

	g.GET("/resources", h.listResources, read)
	g.POST("/resources", h.createResource, write)
	g.GET("/resources/:id", h.getResource, read)

	g.GET("/resource-allocations", h.listAllocations, read)
	g.POST("/resource-allocations", h.createAllocation, write)
	g.GET("/resource-allocations/summary", h.allocationSummary, read)
}

func (h *Handler) listOrganizations(c echo.Context) error {
	p := pagination.FromContext(c)
	orgs, total, err := h.svc.ListOrganizations(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orgs, total, p.Limit, p.Offset))
}

func (h *Handler) createOrganization(c echo.Context) error {
	var o Organization
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateOrganization(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) getOrganization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid organization id")
	}
	o, err := h.svc.GetOrganization(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "organization not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) updateOrganization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid organization id")
	}
	var o Organization
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	o.ID = id
	if err := h.svc.UpdateOrganization(c.Request().Context(), &o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) deleteOrganization(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid organization id")
	}
	if err := h.svc.DeleteOrganization(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "organization not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listDepartments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid organization id")
	}
	deps, err := h.svc.ListDepartments(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, deps)
}

func (h *Handler) createDepartment(c echo.Context) error {
	var d Department
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateDepartment(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) listResourceCategories(c echo.Context) error {
	cats, err := h.svc.ListResourceCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) createResourceCategory(c echo.Context) error {
	var cat ResourceCategory
	if err := c.Bind(&cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateResourceCategory(c.Request().Context(), &cat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) listResources(c echo.Context) error {
	p := pagination.FromContext(c)
	res, total, err := h.svc.ListResources(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(res, total, p.Limit, p.Offset))
}

func (h *Handler) createResource(c echo.Context) error {
	var r Resource
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateResource(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) getResource(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}
	r, err := h.svc.GetResource(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	return c.JSON(http.StatusOK, r)
}

func allocationFilterFromQuery(c echo.Context) (AllocationFilter, error) {
	var f AllocationFilter
	for name, dst := range map[string]**uuid.UUID{
		"organization_id": &f.OrganizationID,
		"department_id":   &f.DepartmentID,
		"resource_id":     &f.ResourceID,
	} {
		if v := c.QueryParam(name); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return f, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
			}
			*dst = &id
		}
	}
	if v := c.QueryParam("fiscal_year"); v != "" {
		f.FiscalYear = &v
	}
	return f, nil
}

func (h *Handler) listAllocations(c echo.Context) error {
	f, err := allocationFilterFromQuery(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	allocs, total, err := h.svc.ListAllocations(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(allocs, total, p.Limit, p.Offset))
}

func (h *Handler) createAllocation(c echo.Context) error {
	var a ResourceAllocation
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateAllocation(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) allocationSummary(c echo.Context) error {
	f, err := allocationFilterFromQuery(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.AllocationSummary(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
