package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pesobook/backend/internal/domain/ledger"
)

// EntityModel is the GORM model for ledger entities
type EntityModel struct {
	AggregateModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	IsArchived bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (EntityModel) TableName() string { return "entities" }

// ToDomain converts the model to a domain entity
func (m *EntityModel) ToDomain() *ledger.Entity {
	e := &ledger.Entity{
		Name:       m.Name,
		UserID:     m.UserID,
		IsArchived: m.IsArchived,
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	e.UpdatedAt = m.UpdatedAt
	e.Version = m.Version
	return e
}

// EntityModelFromDomain converts a domain entity to the model
func EntityModelFromDomain(e *ledger.Entity) *EntityModel {
	m := &EntityModel{
		UserID:     e.UserID,
		Name:       e.Name,
		IsArchived: e.IsArchived,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

// WalletAccountModel is the GORM model for wallet accounts
type WalletAccountModel struct {
	OwnedAggregateModel
	Name                  string           `gorm:"type:varchar(150);not null"`
	Kind                  string           `gorm:"type:varchar(20);not null;index"`
	CurrentBalance        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CreditLimit           *decimal.Decimal `gorm:"type:decimal(18,2)"`
	BillingCycleDay       *int
	LinkedCreditAccountID *uuid.UUID `gorm:"type:uuid;index"`
	IsArchived            bool       `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (WalletAccountModel) TableName() string { return "wallet_accounts" }

// ToDomain converts the model to a domain wallet account
func (m *WalletAccountModel) ToDomain() *ledger.WalletAccount {
	w := &ledger.WalletAccount{
		Name:                  m.Name,
		Kind:                  ledger.WalletKind(m.Kind),
		CurrentBalance:        m.CurrentBalance,
		CreditLimit:           m.CreditLimit,
		BillingCycleDay:       m.BillingCycleDay,
		LinkedCreditAccountID: m.LinkedCreditAccountID,
		IsArchived:            m.IsArchived,
	}
	m.PopulateOwnedAggregateRoot(&w.OwnedAggregateRoot)
	return w
}

// WalletAccountModelFromDomain converts a domain wallet account to the model
func WalletAccountModelFromDomain(w *ledger.WalletAccount) *WalletAccountModel {
	m := &WalletAccountModel{
		Name:                  w.Name,
		Kind:                  w.Kind.String(),
		CurrentBalance:        w.CurrentBalance,
		CreditLimit:           w.CreditLimit,
		BillingCycleDay:       w.BillingCycleDay,
		LinkedCreditAccountID: w.LinkedCreditAccountID,
		IsArchived:            w.IsArchived,
	}
	m.FromDomainOwnedAggregateRoot(w.OwnedAggregateRoot)
	return m
}

// BudgetEnvelopeModel is the GORM model for budget envelopes
type BudgetEnvelopeModel struct {
	OwnedAggregateModel
	Name                  string           `gorm:"type:varchar(150);not null;index"`
	Available             decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MonthlyTarget         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MaxAllocation         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	IsSystem              bool             `gorm:"not null;default:false;index"`
	SystemType            *string          `gorm:"type:varchar(30);index"`
	LinkedWalletAccountID *uuid.UUID       `gorm:"type:uuid;index"`
	LinkedCreditAccountID *uuid.UUID       `gorm:"type:uuid"`
	IsOverflowTarget      bool             `gorm:"not null;default:false;index"`
	IsArchived            bool             `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (BudgetEnvelopeModel) TableName() string { return "budget_envelopes" }

// ToDomain converts the model to a domain budget envelope
func (m *BudgetEnvelopeModel) ToDomain() *ledger.BudgetEnvelope {
	e := &ledger.BudgetEnvelope{
		Name:                  m.Name,
		Available:             m.Available,
		MonthlyTarget:         m.MonthlyTarget,
		MaxAllocation:         m.MaxAllocation,
		IsSystem:              m.IsSystem,
		LinkedWalletAccountID: m.LinkedWalletAccountID,
		LinkedCreditAccountID: m.LinkedCreditAccountID,
		IsOverflowTarget:      m.IsOverflowTarget,
		IsArchived:            m.IsArchived,
	}
	if m.SystemType != nil {
		st := ledger.SystemEnvelopeType(*m.SystemType)
		e.SystemType = &st
	}
	m.PopulateOwnedAggregateRoot(&e.OwnedAggregateRoot)
	return e
}

// BudgetEnvelopeModelFromDomain converts a domain budget envelope to the model
func BudgetEnvelopeModelFromDomain(e *ledger.BudgetEnvelope) *BudgetEnvelopeModel {
	m := &BudgetEnvelopeModel{
		Name:                  e.Name,
		Available:             e.Available,
		MonthlyTarget:         e.MonthlyTarget,
		MaxAllocation:         e.MaxAllocation,
		IsSystem:              e.IsSystem,
		LinkedWalletAccountID: e.LinkedWalletAccountID,
		LinkedCreditAccountID: e.LinkedCreditAccountID,
		IsOverflowTarget:      e.IsOverflowTarget,
		IsArchived:            e.IsArchived,
	}
	if e.SystemType != nil {
		st := e.SystemType.String()
		m.SystemType = &st
	}
	m.FromDomainOwnedAggregateRoot(e.OwnedAggregateRoot)
	return m
}

// CreditAccountModel is the GORM model for credit accounts
type CreditAccountModel struct {
	OwnedAggregateModel
	Name            string           `gorm:"type:varchar(150);not null"`
	OutstandingDebt decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CreditLimit     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	StatementDay    *int
	DueDay          *int
	WalletAccountID *uuid.UUID `gorm:"type:uuid;index"`
	IsArchived      bool       `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (CreditAccountModel) TableName() string { return "credit_accounts" }

// ToDomain converts the model to a domain credit account
func (m *CreditAccountModel) ToDomain() *ledger.CreditAccount {
	c := &ledger.CreditAccount{
		Name:            m.Name,
		OutstandingDebt: m.OutstandingDebt,
		CreditLimit:     m.CreditLimit,
		StatementDay:    m.StatementDay,
		DueDay:          m.DueDay,
		WalletAccountID: m.WalletAccountID,
		IsArchived:      m.IsArchived,
	}
	m.PopulateOwnedAggregateRoot(&c.OwnedAggregateRoot)
	return c
}

// CreditAccountModelFromDomain converts a domain credit account to the model
func CreditAccountModelFromDomain(c *ledger.CreditAccount) *CreditAccountModel {
	m := &CreditAccountModel{
		Name:            c.Name,
		OutstandingDebt: c.OutstandingDebt,
		CreditLimit:     c.CreditLimit,
		StatementDay:    c.StatementDay,
		DueDay:          c.DueDay,
		WalletAccountID: c.WalletAccountID,
		IsArchived:      c.IsArchived,
	}
	m.FromDomainOwnedAggregateRoot(c.OwnedAggregateRoot)
	return m
}

// LoanRecordModel is the GORM model for loan records
type LoanRecordModel struct {
	OwnedAggregateModel
	Name               string          `gorm:"type:varchar(150);not null"`
	Direction          string          `gorm:"type:varchar(20);not null;index"`
	Status             string          `gorm:"type:varchar(20);not null;index"`
	Counterparty       string          `gorm:"type:varchar(200)"`
	TotalBorrowed      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPaid          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RemainingPrincipal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Remarks            string          `gorm:"type:text"`
	IsArchived         bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (LoanRecordModel) TableName() string { return "loan_records" }

// ToDomain converts the model to a domain loan record
func (m *LoanRecordModel) ToDomain() *ledger.LoanRecord {
	l := &ledger.LoanRecord{
		Name:               m.Name,
		Direction:          ledger.LoanDirection(m.Direction),
		Status:             ledger.LoanStatus(m.Status),
		Counterparty:       m.Counterparty,
		TotalBorrowed:      m.TotalBorrowed,
		TotalPaid:          m.TotalPaid,
		RemainingPrincipal: m.RemainingPrincipal,
		Remarks:            m.Remarks,
		IsArchived:         m.IsArchived,
	}
	m.PopulateOwnedAggregateRoot(&l.OwnedAggregateRoot)
	return l
}

// LoanRecordModelFromDomain converts a domain loan record to the model
func LoanRecordModelFromDomain(l *ledger.LoanRecord) *LoanRecordModel {
	m := &LoanRecordModel{
		Name:               l.Name,
		Direction:          l.Direction.String(),
		Status:             l.Status.String(),
		Counterparty:       l.Counterparty,
		TotalBorrowed:      l.TotalBorrowed,
		TotalPaid:          l.TotalPaid,
		RemainingPrincipal: l.RemainingPrincipal,
		Remarks:            l.Remarks,
		IsArchived:         l.IsArchived,
	}
	m.FromDomainOwnedAggregateRoot(l.OwnedAggregateRoot)
	return m
}

// IncomeStreamModel is the GORM model for income streams
type IncomeStreamModel struct {
	OwnedAggregateModel
	Name           string          `gorm:"type:varchar(150);not null"`
	ExpectedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cadence        string          `gorm:"type:varchar(30)"`
	IsArchived     bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name
func (IncomeStreamModel) TableName() string { return "income_streams" }

// ToDomain converts the model to a domain income stream
func (m *IncomeStreamModel) ToDomain() *ledger.IncomeStream {
	s := &ledger.IncomeStream{
		Name:           m.Name,
		ExpectedAmount: m.ExpectedAmount,
		Cadence:        m.Cadence,
		IsArchived:     m.IsArchived,
	}
	m.PopulateOwnedAggregateRoot(&s.OwnedAggregateRoot)
	return s
}

// IncomeStreamModelFromDomain converts a domain income stream to the model
func IncomeStreamModelFromDomain(s *ledger.IncomeStream) *IncomeStreamModel {
	m := &IncomeStreamModel{
		Name:           s.Name,
		ExpectedAmount: s.ExpectedAmount,
		Cadence:        s.Cadence,
		IsArchived:     s.IsArchived,
	}
	m.FromDomainOwnedAggregateRoot(s.OwnedAggregateRoot)
	return m
}

// FinanceTransactionModel is the GORM model for the posting audit trail
type FinanceTransactionModel struct {
	OwnedAggregateModel
	Kind                  string           `gorm:"type:varchar(30);not null;index"`
	PostedAt              time.Time        `gorm:"not null;index"`
	Amount                decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	WalletAccountID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	TargetWalletAccountID *uuid.UUID       `gorm:"type:uuid;index"`
	BudgetEnvelopeID      *uuid.UUID       `gorm:"type:uuid;index"`
	OverflowEnvelopeID    *uuid.UUID       `gorm:"type:uuid"`
	OverflowAmount        *decimal.Decimal `gorm:"type:decimal(18,2)"`
	CreditAccountID       *uuid.UUID       `gorm:"type:uuid;index"`
	LoanRecordID          *uuid.UUID       `gorm:"type:uuid;index"`
	IncomeStreamID        *uuid.UUID       `gorm:"type:uuid;index"`
	AdjustmentDirection   *string          `gorm:"type:varchar(10)"`
	AdjustmentReasonCode  string           `gorm:"type:varchar(50)"`
	Remarks               string           `gorm:"type:text"`
	RecordOnly            bool             `gorm:"not null;default:false"`
	CountsTowardBudget    bool             `gorm:"not null;default:false;index"`
	IsVoided              bool             `gorm:"not null;default:false;index"`
	VoidedAt              *time.Time
	VoidedBy              *uuid.UUID `gorm:"type:uuid"`
	IsReversal            bool       `gorm:"not null;default:false;index"`
	ReversesTransactionID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy             uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName returns the table name
func (FinanceTransactionModel) TableName() string { return "finance_transactions" }

// ToDomain converts the model to a domain finance transaction
func (m *FinanceTransactionModel) ToDomain() *ledger.FinanceTransaction {
	t := &ledger.FinanceTransaction{
		Kind:                  ledger.TransactionKind(m.Kind),
		PostedAt:              m.PostedAt,
		Amount:                m.Amount,
		WalletAccountID:       m.WalletAccountID,
		TargetWalletAccountID: m.TargetWalletAccountID,
		BudgetEnvelopeID:      m.BudgetEnvelopeID,
		OverflowEnvelopeID:    m.OverflowEnvelopeID,
		OverflowAmount:        m.OverflowAmount,
		CreditAccountID:       m.CreditAccountID,
		LoanRecordID:          m.LoanRecordID,
		IncomeStreamID:        m.IncomeStreamID,
		AdjustmentReasonCode:  m.AdjustmentReasonCode,
		Remarks:               m.Remarks,
		RecordOnly:            m.RecordOnly,
		CountsTowardBudget:    m.CountsTowardBudget,
		IsVoided:              m.IsVoided,
		VoidedAt:              m.VoidedAt,
		VoidedBy:              m.VoidedBy,
		IsReversal:            m.IsReversal,
		ReversesTransactionID: m.ReversesTransactionID,
		CreatedBy:             m.CreatedBy,
	}
	if m.AdjustmentDirection != nil {
		dir := ledger.AdjustmentDirection(*m.AdjustmentDirection)
		t.AdjustmentDirection = &dir
	}
	m.PopulateOwnedAggregateRoot(&t.OwnedAggregateRoot)
	return t
}

// FinanceTransactionModelFromDomain converts a domain finance transaction to the model
func FinanceTransactionModelFromDomain(t *ledger.FinanceTransaction) *FinanceTransactionModel {
	m := &FinanceTransactionModel{
		Kind:                  t.Kind.String(),
		PostedAt:              t.PostedAt,
		Amount:                t.Amount,
		WalletAccountID:       t.WalletAccountID,
		TargetWalletAccountID: t.TargetWalletAccountID,
		BudgetEnvelopeID:      t.BudgetEnvelopeID,
		OverflowEnvelopeID:    t.OverflowEnvelopeID,
		OverflowAmount:        t.OverflowAmount,
		CreditAccountID:       t.CreditAccountID,
		LoanRecordID:          t.LoanRecordID,
		IncomeStreamID:        t.IncomeStreamID,
		AdjustmentReasonCode:  t.AdjustmentReasonCode,
		Remarks:               t.Remarks,
		RecordOnly:            t.RecordOnly,
		CountsTowardBudget:    t.CountsTowardBudget,
		IsVoided:              t.IsVoided,
		VoidedAt:              t.VoidedAt,
		VoidedBy:              t.VoidedBy,
		IsReversal:            t.IsReversal,
		ReversesTransactionID: t.ReversesTransactionID,
		CreatedBy:             t.CreatedBy,
	}
	if t.AdjustmentDirection != nil {
		dir := t.AdjustmentDirection.String()
		m.AdjustmentDirection = &dir
	}
	m.FromDomainOwnedAggregateRoot(t.OwnedAggregateRoot)
	return m
}
