package journals

import (
	"errors"
	"log/slog"
	"net/http"

	"athing/internal/procedure"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for journals and entries
type Handler struct {
	service *Service
}

// NewHandler creates a new journals handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the journal and entry procedures on a protected group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/journals", h.CreateJournal)
	protected.GET("/journals", h.Browse)
	protected.GET("/journals/:id", h.GetJournal)
	protected.PATCH("/journals/:id", h.UpdateJournal)
	protected.DELETE("/journals/:id", h.DeleteJournal)
	protected.GET("/accounts/:id/journals", h.ListByAccount)

	protected.POST("/journals/:id/entries", h.CreateEntry)
	protected.GET("/journals/:id/entries", h.ListEntries)
	protected.GET("/entries/:id", h.GetEntry)
	protected.PATCH("/entries/:id", h.UpdateEntry)
	protected.DELETE("/entries/:id", h.DeleteEntry)
}

// CreateJournal handles POST /api/journals
func (h *Handler) CreateJournal(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	journal, err := h.service.CreateJournal(c.Request.Context(), accountID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, JournalResponse{
		Success: true,
		Message: "Journal created successfully",
		Data:    gin.H{"id": journal.ID},
	})
}

// Browse handles GET /api/journals?cursor=
func (h *Handler) Browse(c *gin.Context) {
	page, err := h.service.Browse(c.Request.Context(), c.Query("cursor"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Data: page})
}

// GetJournal handles GET /api/journals/:id
func (h *Handler) GetJournal(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	journal, err := h.service.GetJournal(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Data: journal})
}

// ListByAccount handles GET /api/accounts/:id/journals
func (h *Handler) ListByAccount(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	journals, err := h.service.ListByAccount(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{
		Success: true,
		Data:    gin.H{"id": accountID, "journals": journals},
	})
}

// UpdateJournal handles PATCH /api/journals/:id
func (h *Handler) UpdateJournal(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	journal, err := h.service.UpdateJournal(c.Request.Context(), accountID, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{
		Success: true,
		Message: "Journal updated successfully",
		Data:    journal,
	})
}

// DeleteJournal handles DELETE /api/journals/:id
func (h *Handler) DeleteJournal(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteJournal(c.Request.Context(), accountID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Message: "Journal deleted successfully"})
}

// CreateEntry handles POST /api/journals/:id/entries
func (h *Handler) CreateEntry(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	entry, err := h.service.CreateEntry(c.Request.Context(), accountID, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, JournalResponse{
		Success: true,
		Message: "Entry created successfully",
		Data:    gin.H{"id": entry.ID},
	})
}

// ListEntries handles GET /api/journals/:id/entries
func (h *Handler) ListEntries(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Data: entries})
}

// GetEntry handles GET /api/entries/:id
func (h *Handler) GetEntry(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Data: entry})
}

// UpdateEntry handles PATCH /api/entries/:id
func (h *Handler) UpdateEntry(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	entry, err := h.service.UpdateEntry(c.Request.Context(), accountID, c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{
		Success: true,
		Message: "Entry updated successfully",
		Data:    entry,
	})
}

// DeleteEntry handles DELETE /api/entries/:id
func (h *Handler) DeleteEntry(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), accountID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Success: true, Message: "Entry deleted successfully"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrJournalTitleLength),
		errors.Is(err, ErrEntryTitleLength),
		errors.Is(err, ErrEntryContentLength):
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
	case errors.Is(err, ErrJournalNotFound):
		procedure.Fail(c, procedure.KindNotFound, "journal not found")
	case errors.Is(err, ErrEntryNotFound):
		procedure.Fail(c, procedure.KindNotFound, "entry not found")
	case errors.Is(err, ErrNotOwner):
		procedure.Abort(c, procedure.ErrForbidden)
	default:
		slog.Error("Journal procedure failed",
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
		procedure.Abort(c, err)
	}
}
