package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/pesobook/backend/internal/application/ledger"
	"github.com/pesobook/backend/internal/domain/ledger"
)

// TransactionHandler handles ledger posting, reversal, and history endpoints
type TransactionHandler struct {
	BaseHandler
	posting  *ledgerapp.PostingService
	reversal *ledgerapp.ReversalService
	query    *ledgerapp.TransactionQueryService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(
	posting *ledgerapp.PostingService,
	reversal *ledgerapp.ReversalService,
	query *ledgerapp.TransactionQueryService,
) *TransactionHandler {
	return &TransactionHandler{
		posting:  posting,
		reversal: reversal,
		query:    query,
	}
}

// PostTransactionAPIRequest is the wire form of a posting request
type PostTransactionAPIRequest struct {
	Kind                  string          `json:"kind" binding:"required"`
	PostedAt              *time.Time      `json:"posted_at"`
	Amount                decimal.Decimal `json:"amount" binding:"required"`
	WalletAccountID       string          `json:"wallet_account_id" binding:"required,uuid"`
	TargetWalletAccountID *string         `json:"target_wallet_account_id" binding:"omitempty,uuid"`
	BudgetEnvelopeID      *string         `json:"budget_envelope_id" binding:"omitempty,uuid"`
	LoanRecordID          *string         `json:"loan_record_id" binding:"omitempty,uuid"`
	IncomeStreamID        *string         `json:"income_stream_id" binding:"omitempty,uuid"`
	AdjustmentDirection   *string         `json:"adjustment_direction" binding:"omitempty,oneof=INCREASE DECREASE"`
	AdjustmentReasonCode  string          `json:"adjustment_reason_code" binding:"max=50"`
	Remarks               string          `json:"remarks" binding:"max=2000"`
	RecordOnly            bool            `json:"record_only"`
}

// toAppRequest converts the wire form to the application request
func (r *PostTransactionAPIRequest) toAppRequest(userID, entityID uuid.UUID) (*ledgerapp.PostTransactionRequest, error) {
	walletID, err := uuid.Parse(r.WalletAccountID)
	if err != nil {
		return nil, err
	}
	targetWalletID, err := parseOptionalUUID(r.TargetWalletAccountID)
	if err != nil {
		return nil, err
	}
	envelopeID, err := parseOptionalUUID(r.BudgetEnvelopeID)
	if err != nil {
		return nil, err
	}
	loanID, err := parseOptionalUUID(r.LoanRecordID)
	if err != nil {
		return nil, err
	}
	streamID, err := parseOptionalUUID(r.IncomeStreamID)
	if err != nil {
		return nil, err
	}

	postedAt := time.Now()
	if r.PostedAt != nil {
		postedAt = *r.PostedAt
	}

	req := &ledgerapp.PostTransactionRequest{
		UserID:                userID,
		EntityID:              entityID,
		ActorUserID:           userID,
		Kind:                  ledger.TransactionKind(r.Kind),
		PostedAt:              postedAt,
		Amount:                r.Amount,
		WalletAccountID:       walletID,
		TargetWalletAccountID: targetWalletID,
		BudgetEnvelopeID:      envelopeID,
		LoanRecordID:          loanID,
		IncomeStreamID:        streamID,
		AdjustmentReasonCode:  r.AdjustmentReasonCode,
		Remarks:               r.Remarks,
		RecordOnly:            r.RecordOnly,
	}
	if r.AdjustmentDirection != nil {
		dir := ledger.AdjustmentDirection(*r.AdjustmentDirection)
		req.AdjustmentDirection = &dir
	}
	if req.Kind == ledger.KindAdjustment {
		// Adjustments arrive as a signed amount; the stored form is a
		// positive magnitude plus a direction.
		if r.Amount.IsNegative() {
			dir := ledger.AdjustmentDecrease
			req.Amount = r.Amount.Neg()
			req.AdjustmentDirection = &dir
		} else if req.AdjustmentDirection == nil {
			dir := ledger.AdjustmentIncrease
			req.AdjustmentDirection = &dir
		}
	}
	return req, nil
}

// Post posts a single transaction
func (h *TransactionHandler) Post(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req PostTransactionAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq, err := req.toAppRequest(userID, entityID)
	if err != nil {
		h.BadRequest(c, "Invalid UUID in request")
		return
	}

	tx, err := h.posting.Post(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tx)
}

// BatchPostRequest posts several transactions in one atomic unit
type BatchPostRequest struct {
	Transactions []PostTransactionAPIRequest `json:"transactions" binding:"required,min=1,max=100,dive"`
}

// PostBatch posts a batch of transactions atomically. Either every
// transaction in the batch lands or none do.
func (h *TransactionHandler) PostBatch(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req BatchPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReqs := make([]*ledgerapp.PostTransactionRequest, 0, len(req.Transactions))
	for i := range req.Transactions {
		appReq, err := req.Transactions[i].toAppRequest(userID, entityID)
		if err != nil {
			h.BadRequest(c, "Invalid UUID in request")
			return
		}
		appReqs = append(appReqs, appReq)
	}

	txs, err := h.posting.PostBatch(c.Request.Context(), appReqs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, txs)
}

// ReverseTransactionAPIRequest carries the optional reversal remarks
type ReverseTransactionAPIRequest struct {
	Remarks string `json:"remarks" binding:"max=2000"`
}

// Reverse undoes a posted transaction
func (h *TransactionHandler) Reverse(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ReverseTransactionAPIRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	reversal, err := h.reversal.Reverse(c.Request.Context(), &ledgerapp.ReverseTransactionRequest{
		UserID:        userID,
		EntityID:      entityID,
		ActorUserID:   userID,
		TransactionID: txID,
		Remarks:       req.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reversal)
}

// Update replaces a posted transaction with a corrected one
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req PostTransactionAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	replacement, err := req.toAppRequest(userID, entityID)
	if err != nil {
		h.BadRequest(c, "Invalid UUID in request")
		return
	}

	tx, err := h.reversal.Update(c.Request.Context(), &ledgerapp.UpdateTransactionRequest{
		TransactionID: txID,
		Replacement:   replacement,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// GetByID returns one transaction
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.query.GetTransaction(c.Request.Context(), userID, entityID, txID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tx)
}

// ListTransactionsAPIRequest narrows a transaction history listing
type ListTransactionsAPIRequest struct {
	Page             int        `form:"page" binding:"omitempty,min=1"`
	PageSize         int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	Kind             string     `form:"kind" binding:"omitempty,txkind"`
	WalletAccountID  string     `form:"wallet_account_id" binding:"omitempty,uuid"`
	BudgetEnvelopeID string     `form:"budget_envelope_id" binding:"omitempty,uuid"`
	CreditAccountID  string     `form:"credit_account_id" binding:"omitempty,uuid"`
	LoanRecordID     string     `form:"loan_record_id" binding:"omitempty,uuid"`
	IncomeStreamID   string     `form:"income_stream_id" binding:"omitempty,uuid"`
	PostedFrom       *time.Time `form:"posted_from" time_format:"2006-01-02T15:04:05Z07:00"`
	PostedTo         *time.Time `form:"posted_to" time_format:"2006-01-02T15:04:05Z07:00"`
	IncludeVoided    bool       `form:"include_voided"`
	BudgetOnly       bool       `form:"budget_only"`
	OrderBy          string     `form:"order_by"`
	OrderDir         string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// List returns the entity's transaction history
func (h *TransactionHandler) List(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req ListTransactionsAPIRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := &ledgerapp.ListTransactionsRequest{
		UserID:        userID,
		EntityID:      entityID,
		Page:          req.Page,
		PageSize:      req.PageSize,
		PostedFrom:    req.PostedFrom,
		PostedTo:      req.PostedTo,
		IncludeVoided: req.IncludeVoided,
		BudgetOnly:    req.BudgetOnly,
		OrderBy:       req.OrderBy,
		OrderDir:      req.OrderDir,
	}
	if req.Kind != "" {
		kind := ledger.TransactionKind(req.Kind)
		if !kind.IsValid() {
			h.BadRequest(c, "Unknown transaction kind")
			return
		}
		appReq.Kind = &kind
	}
	if appReq.WalletAccountID, err = parseFormUUID(req.WalletAccountID); err != nil {
		h.BadRequest(c, "Invalid wallet_account_id")
		return
	}
	if appReq.BudgetEnvelopeID, err = parseFormUUID(req.BudgetEnvelopeID); err != nil {
		h.BadRequest(c, "Invalid budget_envelope_id")
		return
	}
	if appReq.CreditAccountID, err = parseFormUUID(req.CreditAccountID); err != nil {
		h.BadRequest(c, "Invalid credit_account_id")
		return
	}
	if appReq.LoanRecordID, err = parseFormUUID(req.LoanRecordID); err != nil {
		h.BadRequest(c, "Invalid loan_record_id")
		return
	}
	if appReq.IncomeStreamID, err = parseFormUUID(req.IncomeStreamID); err != nil {
		h.BadRequest(c, "Invalid income_stream_id")
		return
	}

	result, err := h.query.ListTransactions(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// parseFormUUID parses a non-pointer query string UUID, empty means absent
func parseFormUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RegisterRoutes registers transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.Post)
		transactions.POST("/batch", h.PostBatch)
		transactions.GET("", h.List)
		transactions.GET("/:id", h.GetByID)
		transactions.POST("/:id/reverse", h.Reverse)
		transactions.DELETE("/:id", h.Reverse)
		transactions.PUT("/:id", h.Update)
	}
}
