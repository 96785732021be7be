package notes

import (
	"errors"
	"log/slog"
	"net/http"

	"athing/internal/procedure"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for notes
type Handler struct {
	service *Service
}

// NewHandler creates a new notes handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the note procedures on a protected group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/notes", h.Create)
	protected.GET("/notes", h.Feed)
	protected.PATCH("/notes/:id", h.Update)
	protected.DELETE("/notes/:id", h.Delete)
	protected.GET("/accounts/:id/notes", h.ListByAccount)
}

// Create handles POST /api/notes
func (h *Handler) Create(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	note, err := h.service.Create(c.Request.Context(), accountID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, NoteResponse{
		Success: true,
		Message: "Note created successfully",
		Data:    gin.H{"id": note.ID},
	})
}

// Feed handles GET /api/notes?cursor=
func (h *Handler) Feed(c *gin.Context) {
	page, err := h.service.Feed(c.Request.Context(), c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{Success: true, Data: page})
}

// ListByAccount handles GET /api/accounts/:id/notes
func (h *Handler) ListByAccount(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	notes, err := h.service.ListByAccount(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{
		Success: true,
		Data:    gin.H{"id": accountID, "notes": notes},
	})
}

// Update handles PATCH /api/notes/:id
func (h *Handler) Update(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	note, err := h.service.Update(c.Request.Context(), accountID, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{
		Success: true,
		Message: "Note updated successfully",
		Data:    note,
	})
}

// Delete handles DELETE /api/notes/:id
func (h *Handler) Delete(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), accountID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{Success: true, Message: "Note deleted successfully"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTextLength):
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
	case errors.Is(err, ErrNoteNotFound):
		procedure.Fail(c, procedure.KindNotFound, "note not found")
	case errors.Is(err, ErrNotOwner):
		procedure.Abort(c, procedure.ErrForbidden)
	default:
		slog.Error("Note procedure failed",
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		procedure.Abort(c, err)
	}
}
