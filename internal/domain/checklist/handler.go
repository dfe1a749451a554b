package checklist

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/preop/preop/internal/platform/auth"
	"github.com/preop/preop/internal/platform/search"
	"github.com/preop/preop/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Every ward and OR role both reads and writes the shared checklist;
	// only deletion is restricted.
	staffGroup := api.Group("", auth.RequireRole("admin", "nurse", "or_nurse", "anesthesia"))
	staffGroup.GET("/checklists", h.List)
	staffGroup.GET("/checklists/:id", h.Get)
	staffGroup.POST("/checklists", h.Create)
	staffGroup.PUT("/checklists/:id", h.Update)
	staffGroup.POST("/checklists/:id/finalize", h.Finalize)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.DELETE("/checklists/:id", h.Delete)
}

func editorFromContext(c echo.Context) (Editor, bool) {
	ctx := c.Request().Context()
	return Editor{
		ID:   auth.UserIDFromContext(ctx),
		Name: auth.UserNameFromContext(ctx),
	}, auth.Privileged(ctx)
}

func (h *Handler) Create(c echo.Context) error {
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ed, _ := editorFromContext(c)
	if err := h.svc.Create(c.Request().Context(), &rec, ed); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

// recordWithLocks flattens the record and appends the per-field lock map
// when the client asks for it.
type recordWithLocks struct {
	*Record
	Locks map[string]bool `json:"locks"`
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if c.QueryParam("locks") == "1" {
		ed, privileged := editorFromContext(c)
		rec, locks, err := h.svc.GetWithLocks(c.Request().Context(), id, ed, privileged)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "checklist not found")
		}
		return c.JSON(http.StatusOK, recordWithLocks{Record: rec, Locks: locks})
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "checklist not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := search.ExtractParams(c)
	items, total, err := h.svc.Search(c.Request().Context(), params, c.QueryParam("_sort"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rec Record
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.ID = id
	ed, privileged := editorFromContext(c)
	if err := h.svc.Update(c.Request().Context(), &rec, ed, privileged); err != nil {
		if errors.Is(err, ErrFinalized) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ed, privileged := editorFromContext(c)
	rec, err := h.svc.Finalize(c.Request().Context(), id, ed, privileged)
	if err != nil {
		if errors.Is(err, ErrFinalized) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
