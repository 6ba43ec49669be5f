package visit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homevisit/homevisit/internal/platform/notification"
	"github.com/homevisit/homevisit/pkg/pagination"
)

type Handler struct {
	ledger   *Ledger
	notifier notification.Notifier
}

func NewHandler(ledger *Ledger, notifier notification.Notifier) *Handler {
	return &Handler{ledger: ledger, notifier: notifier}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/visits", h.CreateVisit)
	api.GET("/visits", h.ListVisits)
	api.DELETE("/visits/:id", h.DeleteVisit)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:name/visits", h.ListPatientVisits)
}

// CreateVisit handles POST /visits. Required-field validation lives here,
// not in the ledger: the form is responsible for complete SOAP notes.
func (h *Handler) CreateVisit(c echo.Context) error {
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if v.PatientName == "" || v.BirthDate.IsZero() ||
		v.Subjective == "" || v.Objective == "" || v.Assessment == "" || v.Plan == "" {
		h.notifier.Error("Fill in all required visit fields")
		return echo.NewHTTPError(http.StatusBadRequest, "patientName, birthDate, and all four SOAP fields are required")
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = DateOf(h.ledger.now())
	}

	created, err := h.ledger.Add(c.Request().Context(), v)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// ListVisits handles GET /visits with optional patient substring and
// calendar-date filters. Results come back most-recent-first.
func (h *Handler) ListVisits(c echo.Context) error {
	ctx := c.Request().Context()

	var visits []Visit
	if pattern := c.QueryParam("patient"); pattern != "" {
		visits = h.ledger.ListByPatient(ctx, pattern)
	} else {
		visits = h.ledger.List(ctx)
	}

	if dateStr := c.QueryParam("date"); dateStr != "" {
		day, err := ParseDate(dateStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date filter")
		}
		filtered := visits[:0:0]
		for _, v := range visits {
			if v.VisitDate.Equal(day) {
				filtered = append(filtered, v)
			}
		}
		visits = filtered
	}

	SortByDateDesc(visits)

	pg := pagination.FromContext(c)
	start, end := pg.Slice(len(visits))
	return c.JSON(http.StatusOK, pagination.NewResponse(visits[start:end], len(visits), pg.Limit, pg.Offset))
}

// DeleteVisit handles DELETE /visits/:id.
func (h *Handler) DeleteVisit(c echo.Context) error {
	if err := h.ledger.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPatients handles GET /patients: the derived per-patient summary.
func (h *Handler) ListPatients(c echo.Context) error {
	summaries := h.ledger.ListPatients(c.Request().Context())

	pg := pagination.FromContext(c)
	start, end := pg.Slice(len(summaries))
	return c.JSON(http.StatusOK, pagination.NewResponse(summaries[start:end], len(summaries), pg.Limit, pg.Offset))
}

// ListPatientVisits handles GET /patients/:name/visits: the visit history
// behind a patient detail view, matched case-insensitively by substring.
func (h *Handler) ListPatientVisits(c echo.Context) error {
	visits := h.ledger.ListByPatient(c.Request().Context(), c.Param("name"))
	SortByDateDesc(visits)

	pg := pagination.FromContext(c)
	start, end := pg.Slice(len(visits))
	return c.JSON(http.StatusOK, pagination.NewResponse(visits[start:end], len(visits), pg.Limit, pg.Offset))
}
