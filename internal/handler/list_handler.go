package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/liststore"
	"github.com/noah-isme/sma-odoo-sync/internal/lists"
	"github.com/noah-isme/sma-odoo-sync/internal/middleware"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/export"
	"github.com/noah-isme/sma-odoo-sync/pkg/response"
)

// ListHandler exposes every registered list store under /:entity.
type ListHandler struct {
	lists  *lists.Registry
	logger *zap.Logger
}

// NewListHandler constructs ListHandler.
func NewListHandler(registry *lists.Registry, logger *zap.Logger) *ListHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListHandler{lists: registry, logger: logger}
}

// Register mounts the list routes on rg.
func (h *ListHandler) Register(rg gin.IRoutes) {
	rg.GET("/lists", h.Names)
	rg.GET("/:entity", h.Get)
	rg.POST("/:entity", h.Create)
	rg.PUT("/:entity/:id", h.Update)
	rg.POST("/:entity/refresh", h.Refresh)
	rg.DELETE("/:entity/search", h.ExitSearch)
	rg.GET("/:entity/export", h.Export)
	rg.DELETE("/:entity/:id", h.Delete)
	rg.GET("/:entity/:id/delete-plan", h.DeletePlan)
	rg.POST("/:entity/:id/confirm", h.Confirm)
}

func (h *ListHandler) list(c *gin.Context) (lists.List, bool) {
	l, ok := h.lists.Get(c.Param("entity"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown list "+c.Param("entity")))
		return nil, false
	}
	return l, true
}

// Names godoc
// @Summary Registered lists
// @Tags Lists
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lists [get]
func (h *ListHandler) Names(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.lists.Names(), nil)
}

// Get godoc
// @Summary List state
// @Description Loads the list on first use, then applies the optional search and page.
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Param q query string false "Search query; empty leaves search mode"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /{entity} [get]
func (h *ListHandler) Get(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	page, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	l.Start(ctx)

	if q, present := c.GetQuery("q"); present {
		if strings.TrimSpace(q) == "" {
			l.ExitSearchMode(ctx)
		} else {
			l.ApplySearch(ctx, q)
		}
	}
	if page > 0 {
		if _, err := l.GoToPage(ctx, page); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.state(c, l)
}

// Refresh godoc
// @Summary Reload a list from the server
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Success 200 {object} response.Envelope
// @Router /{entity}/refresh [post]
func (h *ListHandler) Refresh(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	l.Start(c.Request.Context())
	l.Refresh(c.Request.Context())
	h.state(c, l)
}

// ExitSearch godoc
// @Summary Leave search mode
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Success 200 {object} response.Envelope
// @Router /{entity}/search [delete]
func (h *ListHandler) ExitSearch(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	l.ExitSearchMode(c.Request.Context())
	h.state(c, l)
}

// DeletePlan godoc
// @Summary Decide which dialog to show before deleting
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /{entity}/{id}/delete-plan [get]
func (h *ListHandler) DeletePlan(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, l.PlanDelete(c.Request.Context(), id), nil)
}

// Delete godoc
// @Summary Delete a record and refresh the list
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /{entity}/{id} [delete]
func (h *ListHandler) Delete(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = l.Delete(c.Request.Context(), id)
	intent := liststore.DeleteOutcome(id, err)
	if err != nil {
		h.logger.Info("delete rejected", zap.String("list", l.Name()), zap.Int64("id", id), zap.Error(err))
		response.Error(c, err, map[string]interface{}{"intent": intent})
		return
	}
	response.JSON(c, http.StatusOK, intent, nil)
}

// Create godoc
// @Summary Create a record and refresh the list
// @Tags Lists
// @Accept json
// @Produce json
// @Param entity path string true "List name"
// @Success 201 {object} response.Envelope
// @Failure 405 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /{entity} [post]
func (h *ListHandler) Create(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}
	id, err := l.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// Update godoc
// @Summary Update a record and refresh the list
// @Tags Lists
// @Accept json
// @Produce json
// @Param entity path string true "List name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 405 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /{entity}/{id} [put]
func (h *ListHandler) Update(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable payload"))
		return
	}
	if err := l.Update(c.Request.Context(), id, payload); err != nil {
		response.Error(c, err)
		return
	}
	h.state(c, l)
}

// Confirm godoc
// @Summary Confirm a draft record
// @Tags Lists
// @Produce json
// @Param entity path string true "List name"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /{entity}/{id}/confirm [post]
func (h *ListHandler) Confirm(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := l.Confirm(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.state(c, l)
}

// Export godoc
// @Summary Download the loaded list
// @Tags Lists
// @Produce text/csv
// @Produce application/pdf
// @Param entity path string true "List name"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /{entity}/export [get]
func (h *ListHandler) Export(c *gin.Context) {
	l, ok := h.list(c)
	if !ok {
		return
	}
	renderer, err := export.ForFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	l.Start(c.Request.Context())
	body, err := renderer.Render(l.Export())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "export failed"))
		return
	}
	response.File(c, renderer.ContentType(), export.Filename(l.Name(), renderer), body)
}

func (h *ListHandler) state(c *gin.Context, l lists.List) {
	middleware.SetSyncMeta(c, l.Offline(), l.Notice())
	response.JSON(c, http.StatusOK, l.State(), nil, middleware.ExtractMeta(c))
}
