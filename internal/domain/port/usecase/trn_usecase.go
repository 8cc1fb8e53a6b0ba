package usecase

import (
	"context"
	"io"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TrnInput is a partially-specified transaction as supplied by a caller or
// produced by the row import adapter. Optional fields left nil are computed;
// a supplied value always wins over the computed default.
type TrnInput struct {
	CallerRef   entity.CallerRef `json:"callerRef"`
	AssetID     string           `json:"assetId"`
	CashAssetID string           `json:"cashAssetId,omitempty"`
	TrnType     string           `json:"trnType"`

	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees,omitempty"`

	TradeCurrency string `json:"tradeCurrency,omitempty"`
	CashCurrency  string `json:"cashCurrency,omitempty"`

	TradeDate  time.Time  `json:"tradeDate"`
	SettleDate *time.Time `json:"settleDate,omitempty"`

	TradeAmount *decimal.Decimal `json:"tradeAmount,omitempty"`
	CashAmount  *decimal.Decimal `json:"cashAmount,omitempty"`

	TradeCashRate      *decimal.Decimal `json:"tradeCashRate,omitempty"`
	TradeBaseRate      *decimal.Decimal `json:"tradeBaseRate,omitempty"`
	TradePortfolioRate *decimal.Decimal `json:"tradePortfolioRate,omitempty"`

	Status      string                     `json:"status,omitempty"`
	Comments    string                     `json:"comments,omitempty"`
	SubAccounts map[string]decimal.Decimal `json:"subAccounts,omitempty"`
}

// TrnRequest carries a batch of transaction inputs for one portfolio.
// Items are processed sequentially and independently; the engine does not
// enforce all-or-nothing across the batch.
type TrnRequest struct {
	PortfolioID string     `json:"portfolioId"`
	Data        []TrnInput `json:"data"`
}

// Import formats for trusted delimited rows
const (
	FormatBC         = "BC"
	FormatSharesight = "SHARESIGHT"
)

// TrustedTrnImportRequest is the inbound message envelope for row import.
// It arrives over an at-least-once channel; replay safety comes from the
// caller-ref and date-proximity dedup rules, not from the transport.
type TrustedTrnImportRequest struct {
	Portfolio    string   `json:"portfolio"`
	ImportFormat string   `json:"importFormat"`
	Row          []string `json:"row"`
}

// TrnUseCase defines the transaction engine's business operations
type TrnUseCase interface {
	// Submit resolves and persists the inputs of a direct request
	Submit(ctx context.Context, req TrnRequest) ([]*entity.Trn, error)

	// ImportRow transforms a trusted delimited row into a resolved
	// transaction and persists it. Replayed rows are dropped silently.
	ImportRow(ctx context.Context, req TrustedTrnImportRequest) (*entity.Trn, error)

	// CashLedger returns the transactions that moved the given cash asset
	CashLedger(ctx context.Context, portfolioID, cashAssetID string, asOf time.Time) ([]*entity.Trn, error)

	// AutoSettle transitions due PROPOSED event transactions to SETTLED and
	// returns the number settled
	AutoSettle(ctx context.Context) (int, error)

	// Export writes a portfolio's transactions as delimited rows in the BC
	// column order, suitable for lossless re-import
	Export(ctx context.Context, portfolioID string, w io.Writer) error
}
