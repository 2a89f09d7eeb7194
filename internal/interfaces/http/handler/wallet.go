package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/application/registry"
	"github.com/pesobook/backend/internal/domain/ledger"
	"github.com/pesobook/backend/internal/interfaces/http/dto"
)

// WalletHandler handles wallet account API endpoints
type WalletHandler struct {
	BaseHandler
	wallets *registry.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(wallets *registry.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// CreateWalletAPIRequest describes a new wallet account
type CreateWalletAPIRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=150"`
	Kind            string           `json:"kind" binding:"required,oneof=CASH BANK E_WALLET CREDIT_CARD ASSET"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	CreditLimit     *decimal.Decimal `json:"credit_limit"`
	BillingCycleDay *int             `json:"billing_cycle_day" binding:"omitempty,min=1,max=31"`
}

// Create creates a wallet account. Credit-card wallets also get a linked
// credit account in the same transaction.
func (h *WalletHandler) Create(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	var req CreateWalletAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wallet, err := h.wallets.CreateWallet(c.Request.Context(), &registry.CreateWalletRequest{
		UserID:          userID,
		EntityID:        entityID,
		Name:            req.Name,
		Kind:            ledger.WalletKind(req.Kind),
		OpeningBalance:  req.OpeningBalance,
		CreditLimit:     req.CreditLimit,
		BillingCycleDay: req.BillingCycleDay,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wallet)
}

// GetByID returns one wallet account
func (h *WalletHandler) GetByID(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	wallet, err := h.wallets.GetWallet(c.Request.Context(), userID, entityID, walletID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// List returns the entity's wallet accounts
func (h *WalletHandler) List(c *gin.Context) {
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

	result, err := h.wallets.ListWallets(c.Request.Context(), userID, entityID, includeArchived, toSharedFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	Paginated(&h.BaseHandler, c, result)
}

// RenameWalletAPIRequest carries the new wallet name
type RenameWalletAPIRequest struct {
	Name string `json:"name" binding:"required,min=1,max=150"`
}

// Rename renames a wallet account
func (h *WalletHandler) Rename(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	var req RenameWalletAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wallet, err := h.wallets.RenameWallet(c.Request.Context(), userID, entityID, walletID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// Archive archives a wallet account
func (h *WalletHandler) Archive(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	if err := h.wallets.ArchiveWallet(c.Request.Context(), userID, entityID, walletID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// OverrideBalanceAPIRequest sets a wallet balance directly
type OverrideBalanceAPIRequest struct {
	NewBalance decimal.Decimal `json:"new_balance"`
	ReasonCode string          `json:"reason_code" binding:"max=50"`
	Remarks    string          `json:"remarks" binding:"max=2000"`
}

// OverrideBalance sets the wallet balance to an exact figure. The
// difference lands in history as an adjustment transaction.
func (h *WalletHandler) OverrideBalance(c *gin.Context) {
	userID, entityID, err := getOwnerScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing owner scope")
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	var req OverrideBalanceAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tx, err := h.wallets.OverrideBalance(c.Request.Context(), &registry.OverrideBalanceRequest{
		UserID:      userID,
		EntityID:    entityID,
		ActorUserID: userID,
		WalletID:    walletID,
		NewBalance:  req.NewBalance,
		ReasonCode:  req.ReasonCode,
		Remarks:     req.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	// tx is nil when the balance already matched and nothing was posted
	h.Success(c, tx)
}

// RegisterRoutes registers wallet routes
func (h *WalletHandler) RegisterRoutes(rg *gin.RouterGroup) {
	wallets := rg.Group("/wallets")
	{
		wallets.POST("", h.Create)
		wallets.GET("", h.List)
		wallets.GET("/:id", h.GetByID)
		wallets.PUT("/:id/name", h.Rename)
		wallets.POST("/:id/archive", h.Archive)
		wallets.POST("/:id/balance/override", h.OverrideBalance)
	}
}
