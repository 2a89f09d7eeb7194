package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most tables
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// WalletSortFields contains allowed sort fields for wallet accounts
var WalletSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"kind":            true,
	"current_balance": true,
}

// EnvelopeSortFields contains allowed sort fields for budget envelopes
var EnvelopeSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"available":      true,
	"monthly_target": true,
}

// CreditAccountSortFields contains allowed sort fields for credit accounts
var CreditAccountSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"outstanding_debt": true,
}

// LoanSortFields contains allowed sort fields for loan records
var LoanSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"name":                true,
	"status":              true,
	"direction":           true,
	"remaining_principal": true,
}

// IncomeStreamSortFields contains allowed sort fields for income streams
var IncomeStreamSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"expected_amount": true,
}

// TransactionSortFields contains allowed sort fields for finance transactions
var TransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"posted_at":  true,
	"amount":     true,
	"kind":       true,
}
