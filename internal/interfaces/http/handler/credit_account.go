package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/application/registry"
	"github.com/pesobook/backend/internal/interfaces/http/dto"
)

// CreditAccountHandler handles credit account API endpoints. Credit
// accounts are created through credit-card wallet creation, so this
// handler only reads and updates them.
type CreditAccountHandler struct {
	BaseHandler
	accounts *registry.CreditAccountService
}

// NewCreditAccountHandler creates a new CreditAccountHandler
func NewCreditAccountHandler(accounts *registry.CreditAccountService) *CreditAccountHandler {
	return &CreditAccountHandler{accounts: accounts}
}

// GetByID returns one credit account
func (h *CreditAccountHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit account ID format")
		return
	}

	account, err := h.accounts.GetCreditAccount(c.Request.Context(), userID, entityID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// List returns the entity's credit accounts
func (h *CreditAccountHandler) List(c *gin.Context) {
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

	result, err := h.accounts.ListCreditAccounts(c.Request.Context(), userID, entityID, includeArchived, toSharedFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// UpdateCreditAccountAPIRequest carries the editable credit account settings
type UpdateCreditAccountAPIRequest struct {
	CreditLimit  *decimal.Decimal `json:"credit_limit"`
	ClearLimit   bool             `json:"clear_limit"`
	StatementDay *int             `json:"statement_day" binding:"omitempty,min=1,max=31"`
	DueDay       *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
}

// Update applies credit account setting changes
func (h *CreditAccountHandler) Update(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit account ID format")
		return
	}

	var req UpdateCreditAccountAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accounts.UpdateCreditAccount(c.Request.Context(), &registry.UpdateCreditAccountRequest{
		UserID:          userID,
		EntityID:        entityID,
		CreditAccountID: accountID,
		CreditLimit:     req.CreditLimit,
		ClearLimit:      req.ClearLimit,
		StatementDay:    req.StatementDay,
		DueDay:          req.DueDay,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// RegisterRoutes registers credit account routes
func (h *CreditAccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/credit-accounts")
	{
		accounts.GET("", h.List)
		accounts.GET("/:id", h.GetByID)
		accounts.PUT("/:id", h.Update)
	}
}
