package professional

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homevisit/homevisit/internal/platform/notification"
	"github.com/homevisit/homevisit/pkg/pagination"
)

type Handler struct {
	directory *Directory
	notifier  notification.Notifier
}

func NewHandler(directory *Directory, notifier notification.Notifier) *Handler {
	return &Handler{directory: directory, notifier: notifier}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/professionals", h.ListProfessionals)
	api.POST("/professionals", h.CreateProfessional)
	api.PUT("/professionals/:id", h.UpdateProfessional)
	api.DELETE("/professionals/:id", h.DeleteProfessional)
}

type professionalRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Active    bool   `json:"active"`
}

func (h *Handler) CreateProfessional(c echo.Context) error {
	var req professionalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Specialty == "" {
		h.notifier.Error("Name and specialty are required")
		return echo.NewHTTPError(http.StatusBadRequest, "name and specialty are required")
	}

	p, err := h.directory.Add(c.Request().Context(), req.Name, req.Specialty, req.Active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProfessional(c echo.Context) error {
	var req professionalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Specialty == "" {
		h.notifier.Error("Name and specialty are required")
		return echo.NewHTTPError(http.StatusBadRequest, "name and specialty are required")
	}

	if err := h.directory.Update(c.Request().Context(), c.Param("id"), req.Name, req.Specialty, req.Active); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteProfessional(c echo.Context) error {
	if err := h.directory.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProfessionals handles GET /professionals. With ?active=true only
// active roster entries come back, in their original relative order.
func (h *Handler) ListProfessionals(c echo.Context) error {
	ctx := c.Request().Context()

	var professionals []Professional
	if c.QueryParam("active") == "true" {
		professionals = h.directory.ListActive(ctx)
	} else {
		professionals = h.directory.List(ctx)
	}

	pg := pagination.FromContext(c)
	start, end := pg.Slice(len(professionals))
	return c.JSON(http.StatusOK, pagination.NewResponse(professionals[start:end], len(professionals), pg.Limit, pg.Offset))
}
