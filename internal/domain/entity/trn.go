package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// TrnStatus defines the lifecycle state of a transaction
type TrnStatus string

// Transaction statuses. The only legal transition is PROPOSED -> SETTLED.
const (
	StatusProposed TrnStatus = "PROPOSED"
	StatusSettled  TrnStatus = "SETTLED"
)

// ParseTrnStatus resolves a caller-supplied status string, defaulting to SETTLED
func ParseTrnStatus(value string) (TrnStatus, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	switch s {
	case "":
		return StatusSettled, nil
	case string(StatusProposed):
		return StatusProposed, nil
	case string(StatusSettled):
		return StatusSettled, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidStatus, value)
	}
}

// CurrentVersion is the schema version stamped on newly resolved transactions.
// Records carrying an older version are upgraded on read by the migrator.
const CurrentVersion = "3"

// CallerRef is the idempotency/dedup key for externally sourced transactions.
// It identifies the upstream system, batch and row - it is not a primary key.
type CallerRef struct {
	Provider string `json:"provider"`
	Batch    string `json:"batch"`
	CallerID string `json:"callerId"`
}

// Key returns the flattened form used for dedup lookups and logging
func (c CallerRef) Key() string {
	return c.Provider + "." + c.Batch + "." + c.CallerID
}

// IsEmpty returns true when no component of the reference is set
func (c CallerRef) IsEmpty() bool {
	return c.Provider == "" && c.Batch == "" && c.CallerID == ""
}

// Trn is a fully resolved investment transaction. Every stored Trn carries
// self-consistent amounts, the complete rate triad and a signed cash impact.
type Trn struct {
	ID          string
	CallerRef   CallerRef
	PortfolioID string
	AssetID     string
	CashAssetID string

	TrnType  TrnType
	Status   TrnStatus
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Fees     decimal.Decimal

	TradeAmount decimal.Decimal
	CashAmount  decimal.Decimal

	TradeCurrency string
	CashCurrency  string

	// Rates express "1 unit of trade currency = N units of X" as of TradeDate
	TradeCashRate      decimal.Decimal
	TradeBaseRate      decimal.Decimal
	TradePortfolioRate decimal.Decimal

	TradeDate  time.Time
	SettleDate *time.Time

	SubAccounts map[string]decimal.Decimal
	Comments    string
	Version     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settle transitions the transaction from PROPOSED to SETTLED.
// SETTLED is terminal.
func (t *Trn) Settle(now time.Time) error {
	if t.Status == StatusSettled {
		return errs.ErrAlreadySettled
	}
	t.Status = StatusSettled
	t.UpdatedAt = now
	return nil
}

// IsSettled returns true when the transaction has reached its terminal state
func (t *Trn) IsSettled() bool {
	return t.Status == StatusSettled
}

// NeedsUpgrade returns true when the record predates the three-rate model
func (t *Trn) NeedsUpgrade() bool {
	return t.Version != CurrentVersion
}

// InCashLedger reports whether this transaction belongs to the ledger of the
// given cash asset. Besides the settlement side, an FX_BUY is also a member
// of the purchased currency's ledger: its asset is the currency bought while
// CashAssetID points at the currency sold.
func (t *Trn) InCashLedger(cashAssetID string) bool {
	if t.CashAssetID == cashAssetID {
		return true
	}
	return t.TrnType == TrnFxBuy && t.AssetID == cashAssetID
}

// LedgerAmount returns the signed amount this transaction contributes to the
// given cash asset's ledger. For the purchased leg of an FX_BUY that is the
// trade amount (a credit); for the settlement side it is the cash amount.
func (t *Trn) LedgerAmount(cashAssetID string) decimal.Decimal {
	if t.TrnType == TrnFxBuy && t.AssetID == cashAssetID && t.CashAssetID != cashAssetID {
		return t.TradeAmount
	}
	return t.CashAmount
}
