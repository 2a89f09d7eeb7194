package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/application/registry"
	"github.com/pesobook/backend/internal/interfaces/http/dto"
)

// IncomeStreamHandler handles income stream API endpoints
type IncomeStreamHandler struct {
	BaseHandler
	streams *registry.IncomeStreamService
	query   *ledgerapp.TransactionQueryService
}

// NewIncomeStreamHandler creates a new IncomeStreamHandler
func NewIncomeStreamHandler(streams *registry.IncomeStreamService, query *ledgerapp.TransactionQueryService) *IncomeStreamHandler {
	return &IncomeStreamHandler{streams: streams, query: query}
}

// CreateIncomeStreamAPIRequest describes a new income stream
type CreateIncomeStreamAPIRequest struct {
	Name string `json:"name" binding:"required,min=1,max=150"`
}

// Create creates an income stream
func (h *IncomeStreamHandler) Create(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req CreateIncomeStreamAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stream, err := h.streams.CreateIncomeStream(c.Request.Context(), userID, entityID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, stream)
}

// GetByID returns one income stream
func (h *IncomeStreamHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid income stream ID format")
		return
	}

	stream, err := h.streams.GetIncomeStream(c.Request.Context(), userID, entityID, streamID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stream)
}

// List returns the entity's income streams
func (h *IncomeStreamHandler) List(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	includeArchived := c.Query("include_archived") == "true"

	result, err := h.streams.ListIncomeStreams(c.Request.Context(), userID, entityID, includeArchived, toSharedFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// UpdateIncomeStreamAPIRequest carries the editable stream fields
type UpdateIncomeStreamAPIRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=150"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount"`
	Cadence        *string          `json:"cadence" binding:"omitempty,max=30"`
}

// Update applies stream changes
func (h *IncomeStreamHandler) Update(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid income stream ID format")
		return
	}

	var req UpdateIncomeStreamAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stream, err := h.streams.UpdateIncomeStream(c.Request.Context(), &registry.UpdateIncomeStreamRequest{
		UserID:         userID,
		EntityID:       entityID,
		StreamID:       streamID,
		Name:           req.Name,
		ExpectedAmount: req.ExpectedAmount,
		Cadence:        req.Cadence,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stream)
}

// Archive archives an income stream
func (h *IncomeStreamHandler) Archive(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid income stream ID format")
		return
	}

	if err := h.streams.ArchiveIncomeStream(c.Request.Context(), userID, entityID, streamID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// IncomeStreamTotalResponse sums income attributed to a stream
type IncomeStreamTotalResponse struct {
	IncomeStreamID uuid.UUID       `json:"income_stream_id"`
	Total          decimal.Decimal `json:"total"`
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
}

// GetTotal sums the stream's posted income in a window
func (h *IncomeStreamHandler) GetTotal(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	streamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid income stream ID format")
		return
	}

	from, to, err := parseTimeWindow(c)
	if err != nil {
		h.BadRequest(c, "Invalid time window, use RFC 3339 timestamps")
		return
	}

	total, err := h.query.IncomeStreamTotal(c.Request.Context(), userID, entityID, streamID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, IncomeStreamTotalResponse{
		IncomeStreamID: streamID,
		Total:          total,
		From:           from,
		To:             to,
	})
}

// RegisterRoutes registers income stream routes
func (h *IncomeStreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	streams := rg.Group("/income-streams")
	{
		streams.POST("", h.Create)
		streams.GET("", h.List)
		streams.GET("/:id", h.GetByID)
		streams.GET("/:id/total", h.GetTotal)
		streams.PUT("/:id", h.Update)
		streams.POST("/:id/archive", h.Archive)
	}
}
