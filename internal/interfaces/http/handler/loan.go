package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/application/registry"
	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/interfaces/http/dto"
)

// LoanHandler handles loan record API endpoints. Principal only moves
// through LOAN_BORROW and LOAN_REPAY postings; this handler manages the
// records around those movements.
type LoanHandler struct {
	BaseHandler
	loans *registry.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loans *registry.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// CreateLoanAPIRequest describes a new loan record
type CreateLoanAPIRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=150"`
	Direction    string `json:"direction" binding:"required,oneof=YOU_OWE YOU_ARE_OWED"`
	Counterparty string `json:"counterparty" binding:"max=200"`
	Remarks      string `json:"remarks" binding:"max=2000"`
}

// Create creates a loan record
func (h *LoanHandler) Create(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req CreateLoanAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	loan, err := h.loans.CreateLoan(c.Request.Context(), &registry.CreateLoanRequest{
		UserID:       userID,
		EntityID:     entityID,
		Name:         req.Name,
		Direction:    ledger.LoanDirection(req.Direction),
		Counterparty: req.Counterparty,
		Remarks:      req.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, loan)
}

// GetByID returns one loan record
func (h *LoanHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	loan, err := h.loans.GetLoan(c.Request.Context(), userID, entityID, loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// List returns the entity's loan records
func (h *LoanHandler) List(c *gin.Context) {
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

	result, err := h.loans.ListLoans(c.Request.Context(), userID, entityID, includeArchived, toSharedFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// UpdateLoanAPIRequest carries the editable loan fields
type UpdateLoanAPIRequest struct {
	Status  *string `json:"status" binding:"omitempty,oneof=INACTIVE ACTIVE PAID WRITTEN_OFF"`
	Remarks *string `json:"remarks" binding:"omitempty,max=2000"`
}

// Update applies status or remark changes
func (h *LoanHandler) Update(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	var req UpdateLoanAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := &registry.UpdateLoanRequest{
		UserID:   userID,
		EntityID: entityID,
		LoanID:   loanID,
		Remarks:  req.Remarks,
	}
	if req.Status != nil {
		status := ledger.LoanStatus(*req.Status)
		appReq.Status = &status
	}

	loan, err := h.loans.UpdateLoan(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// Archive archives a loan record. Loans with an open balance cannot be
// archived.
func (h *LoanHandler) Archive(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	if err := h.loans.ArchiveLoan(c.Request.Context(), userID, entityID, loanID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers loan routes
func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loans := rg.Group("/loans")
	{
		loans.POST("", h.Create)
		loans.GET("", h.List)
		loans.GET("/:id", h.GetByID)
		loans.PUT("/:id", h.Update)
		loans.POST("/:id/archive", h.Archive)
	}
}
