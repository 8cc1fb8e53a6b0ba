package entity

import "strings"

// CashMarket is the pseudo market code cash balance assets live on
const CashMarket = "CASH"

// CashCategory marks assets that represent a currency balance
const CashCategory = "Cash"

// Asset is the engine's projection of an instrument in the asset store.
// For pure cash transactions the asset is the cash instrument itself.
type Asset struct {
	ID            string
	Code          string
	Name          string
	Market        string
	Category      string
	PriceCurrency string
	OwnerID       string
}

// IsCash returns true for synthesized cash balance assets
func (a *Asset) IsCash() bool {
	return a.Market == CashMarket
}

// CashBalanceName returns the canonical name of a currency's balance asset
func CashBalanceName(currency string) string {
	return strings.ToUpper(currency) + " Balance"
}

// Portfolio is the engine's projection of the owning portfolio
type Portfolio struct {
	ID       string
	Code     string
	Name     string
	Currency string
	Base     string
	OwnerID  string
}

// OwnerScopedCode splits an asset code that may carry an "<ownerId>.<code>"
// scoping prefix. When the prefix matches the caller's owner id the bare
// code is returned; otherwise the code is returned untouched.
func OwnerScopedCode(code, ownerID string) string {
	if ownerID == "" {
		return code
	}
	prefix := ownerID + "."
	if strings.HasPrefix(code, prefix) {
		return strings.TrimPrefix(code, prefix)
	}
	return code
}
