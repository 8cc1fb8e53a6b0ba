package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CallerRefRequest identifies the upstream system's view of a transaction
type CallerRefRequest struct {
	Provider string `json:"provider"`
	Batch    string `json:"batch"`
	CallerID string `json:"callerId"`
}

// TrnInputRequest represents one transaction input within a submit request.
// Optional fields left out are computed server side; a supplied value always
// wins over the computed default.
type TrnInputRequest struct {
	CallerRef   CallerRefRequest `json:"callerRef"`
	AssetID     string           `json:"assetId" binding:"required"`
	CashAssetID string           `json:"cashAssetId"`
	TrnType     string           `json:"trnType" binding:"required"`

	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`

	TradeCurrency string `json:"tradeCurrency"`
	CashCurrency  string `json:"cashCurrency"`

	TradeDate  time.Time  `json:"tradeDate" binding:"required"`
	SettleDate *time.Time `json:"settleDate"`

	TradeAmount *decimal.Decimal `json:"tradeAmount"`
	CashAmount  *decimal.Decimal `json:"cashAmount"`

	TradeCashRate      *decimal.Decimal `json:"tradeCashRate"`
	TradeBaseRate      *decimal.Decimal `json:"tradeBaseRate"`
	TradePortfolioRate *decimal.Decimal `json:"tradePortfolioRate"`

	Status      string                     `json:"status"`
	Comments    string                     `json:"comments"`
	SubAccounts map[string]decimal.Decimal `json:"subAccounts"`
}

// TrnSubmitRequest represents the API request for submitting a batch of
// transactions to one portfolio
type TrnSubmitRequest struct {
	Data []TrnInputRequest `json:"data" binding:"required,min=1"`
}

// TrnResponse represents one resolved transaction in API responses
type TrnResponse struct {
	ID          string `json:"id"`
	PortfolioID string `json:"portfolioId"`
	AssetID     string `json:"assetId"`
	CashAssetID string `json:"cashAssetId,omitempty"`
	TrnType     string `json:"trnType"`
	Status      string `json:"status"`

	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`

	TradeAmount decimal.Decimal `json:"tradeAmount"`
	CashAmount  decimal.Decimal `json:"cashAmount"`

	TradeCurrency string `json:"tradeCurrency"`
	CashCurrency  string `json:"cashCurrency,omitempty"`

	TradeCashRate      decimal.Decimal `json:"tradeCashRate"`
	TradeBaseRate      decimal.Decimal `json:"tradeBaseRate"`
	TradePortfolioRate decimal.Decimal `json:"tradePortfolioRate"`

	TradeDate  string  `json:"tradeDate"`
	SettleDate *string `json:"settleDate,omitempty"`

	Comments string `json:"comments,omitempty"`
	Version  string `json:"version"`
}

// TrnSubmitResponse represents the API response for a submitted batch
type TrnSubmitResponse struct {
	Trns []TrnResponse `json:"trns"`
}

// LadderEntryResponse represents one cash ladder row. Amount is the signed
// movement of the queried cash asset, which for the purchased side of an
// FX_BUY differs from the transaction's own cash amount.
type LadderEntryResponse struct {
	Trn    TrnResponse     `json:"trn"`
	Amount decimal.Decimal `json:"amount"`
}

// CashLadderResponse represents the API response for a cash ladder query
type CashLadderResponse struct {
	PortfolioID string                `json:"portfolioId"`
	CashAssetID string                `json:"cashAssetId"`
	AsOf        string                `json:"asOf"`
	Entries     []LadderEntryResponse `json:"entries"`
}

// SettleResponse represents the API response for a settlement sweep
type SettleResponse struct {
	Settled int `json:"settled"`
}
