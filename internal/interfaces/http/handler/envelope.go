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

// EnvelopeHandler handles budget envelope API endpoints
type EnvelopeHandler struct {
	BaseHandler
	envelopes *registry.EnvelopeService
	query     *ledgerapp.TransactionQueryService
}

// NewEnvelopeHandler creates a new EnvelopeHandler
func NewEnvelopeHandler(envelopes *registry.EnvelopeService, query *ledgerapp.TransactionQueryService) *EnvelopeHandler {
	return &EnvelopeHandler{envelopes: envelopes, query: query}
}

// CreateEnvelopeAPIRequest describes a new budget envelope
type CreateEnvelopeAPIRequest struct {
	Name string `json:"name" binding:"required,min=1,max=150"`
}

// Create creates a budget envelope
func (h *EnvelopeHandler) Create(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req CreateEnvelopeAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	env, err := h.envelopes.CreateEnvelope(c.Request.Context(), userID, entityID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, env)
}

// GetByID returns one envelope
func (h *EnvelopeHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid envelope ID format")
		return
	}

	env, err := h.envelopes.GetEnvelope(c.Request.Context(), userID, entityID, envelopeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, env)
}

// List returns the entity's envelopes
func (h *EnvelopeHandler) List(c *gin.Context) {
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

	result, err := h.envelopes.ListEnvelopes(c.Request.Context(), userID, entityID, includeArchived, toSharedFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// UpdateEnvelopeAPIRequest carries the editable envelope settings
type UpdateEnvelopeAPIRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=150"`
	MonthlyTarget *decimal.Decimal `json:"monthly_target"`
	MaxAllocation *decimal.Decimal `json:"max_allocation"`
	ClearMax      bool             `json:"clear_max"`
}

// Update applies envelope setting changes
func (h *EnvelopeHandler) Update(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid envelope ID format")
		return
	}

	var req UpdateEnvelopeAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	env, err := h.envelopes.UpdateEnvelope(c.Request.Context(), &registry.UpdateEnvelopeRequest{
		UserID:        userID,
		EntityID:      entityID,
		EnvelopeID:    envelopeID,
		Name:          req.Name,
		MonthlyTarget: req.MonthlyTarget,
		MaxAllocation: req.MaxAllocation,
		ClearMax:      req.ClearMax,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, env)
}

// SetOverflowTarget marks an envelope as the destination for allocation
// amounts that exceed another envelope's cap
func (h *EnvelopeHandler) SetOverflowTarget(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid envelope ID format")
		return
	}

	if err := h.envelopes.SetOverflowTarget(c.Request.Context(), userID, entityID, envelopeID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Archive archives an envelope
func (h *EnvelopeHandler) Archive(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid envelope ID format")
		return
	}

	if err := h.envelopes.ArchiveEnvelope(c.Request.Context(), userID, entityID, envelopeID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// EnvelopeActivityResponse sums budget-counted movement through an envelope
type EnvelopeActivityResponse struct {
	EnvelopeID uuid.UUID       `json:"envelope_id"`
	Activity   decimal.Decimal `json:"activity"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
}

// GetActivity sums the envelope's budget-counted transactions in a window
func (h *EnvelopeHandler) GetActivity(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid envelope ID format")
		return
	}

	from, to, err := parseTimeWindow(c)
	if err != nil {
		h.BadRequest(c, "Invalid time window, use RFC 3339 timestamps")
		return
	}

	activity, err := h.query.EnvelopeActivity(c.Request.Context(), userID, entityID, envelopeID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, EnvelopeActivityResponse{
		EnvelopeID: envelopeID,
		Activity:   activity,
		From:       from,
		To:         to,
	})
}

// parseTimeWindow reads the optional from/to query bounds
func parseTimeWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}

// RegisterRoutes registers envelope routes
func (h *EnvelopeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	envelopes := rg.Group("/envelopes")
	{
		envelopes.POST("", h.Create)
		envelopes.GET("", h.List)
		envelopes.GET("/:id", h.GetByID)
		envelopes.GET("/:id/activity", h.GetActivity)
		envelopes.PUT("/:id", h.Update)
		envelopes.POST("/:id/overflow-target", h.SetOverflowTarget)
		envelopes.POST("/:id/archive", h.Archive)
	}
}
