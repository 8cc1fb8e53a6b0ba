package trn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// BC format column order. Export reproduces this exact order and the header
// names below so that export -> import round trips losslessly.
const (
	bcBatch = iota
	bcCallerID
	bcType
	bcMarket
	bcCode
	bcName
	bcCashAccount
	bcCashCurrency
	bcDate
	bcQuantity
	bcBaseRate
	bcTradeCurrency
	bcPrice
	bcFees
	bcPortfolioRate
	bcTradeAmount
	bcCashAmount
	bcComments
	bcStatus
	bcColumns
)

// BCHeader is the header row of the BC delimited format
var BCHeader = []string{
	"Batch", "CallerId", "Type", "Market", "Code", "Name",
	"CashAccount", "CashCurrency", "Date", "Quantity", "BaseRate",
	"TradeCurrency", "Price", "Fees", "PortfolioRate", "TradeAmount",
	"CashAmount", "Comments", "Status",
}

// Legacy broker (Sharesight trade export) column order
const (
	ssMarket = iota
	ssCode
	ssName
	ssType
	ssDate
	ssQuantity
	ssPrice
	ssBrokerage
	ssCurrency
	ssValue
	ssComments
	ssColumns
)

// dateLayouts accepted in imported rows
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// RowAdapter parses a trusted delimited row into a transaction input shape.
// Rows come from hand-exported spreadsheets, so every cell is trimmed of
// whitespace and surrounding quotes before use.
type RowAdapter struct {
	assets       integration.AssetFinder
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewRowAdapter creates a new RowAdapter
func NewRowAdapter(assets integration.AssetFinder, timeProvider coreport.TimeProvider, logger coreport.Logger) *RowAdapter {
	return &RowAdapter{assets: assets, timeProvider: timeProvider, logger: logger}
}

// Transform converts a row of the given format for the given portfolio.
//
// Possible errors:
// - ErrInvalidRow: malformed row or unknown format
// - ErrFutureTradeDate: trade date strictly after today
// - ErrAssetNotFound: unresolvable cash account reference
func (a *RowAdapter) Transform(
	ctx context.Context,
	portfolio *entity.Portfolio,
	format string,
	row []string,
) (usecase.TrnInput, error) {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case usecase.FormatBC:
		return a.transformBC(ctx, portfolio, row)
	case usecase.FormatSharesight:
		return a.transformSharesight(ctx, portfolio, row)
	default:
		return usecase.TrnInput{}, errs.NewRowError(format, "format", format,
			fmt.Errorf("%w: unknown import format", errs.ErrInvalidRow))
	}
}

func (a *RowAdapter) transformBC(
	ctx context.Context,
	portfolio *entity.Portfolio,
	row []string,
) (usecase.TrnInput, error) {
	if len(row) < bcColumns {
		return usecase.TrnInput{}, errs.NewRowError(usecase.FormatBC, "row",
			fmt.Sprintf("%d columns", len(row)),
			fmt.Errorf("%w: expected %d columns", errs.ErrInvalidRow, bcColumns))
	}

	tradeDate, err := a.parseTradeDate(usecase.FormatBC, cell(row, bcDate))
	if err != nil {
		return usecase.TrnInput{}, err
	}

	asset, err := a.resolveAsset(ctx, portfolio,
		cell(row, bcMarket), cell(row, bcCode), cell(row, bcName))
	if err != nil {
		return usecase.TrnInput{}, err
	}

	input := usecase.TrnInput{
		CallerRef: entity.CallerRef{
			Provider: portfolio.OwnerID,
			Batch:    cell(row, bcBatch),
			CallerID: cell(row, bcCallerID),
		},
		AssetID:       asset.ID,
		TrnType:       cell(row, bcType),
		TradeCurrency: cell(row, bcTradeCurrency),
		CashCurrency:  cell(row, bcCashCurrency),
		TradeDate:     tradeDate,
		Comments:      cell(row, bcComments),
		Status:        cell(row, bcStatus),
	}

	if input.Quantity, err = parseCell(usecase.FormatBC, "Quantity", cell(row, bcQuantity)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.Price, err = parseCell(usecase.FormatBC, "Price", cell(row, bcPrice)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.Fees, err = parseCell(usecase.FormatBC, "Fees", cell(row, bcFees)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.TradeBaseRate, err = parseOptionalCell(usecase.FormatBC, "BaseRate", cell(row, bcBaseRate)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.TradePortfolioRate, err = parseOptionalCell(usecase.FormatBC, "PortfolioRate", cell(row, bcPortfolioRate)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.TradeAmount, err = parseOptionalCell(usecase.FormatBC, "TradeAmount", cell(row, bcTradeAmount)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.CashAmount, err = parseOptionalCell(usecase.FormatBC, "CashAmount", cell(row, bcCashAmount)); err != nil {
		return usecase.TrnInput{}, err
	}

	if account := cell(row, bcCashAccount); account != "" {
		cashAsset, err := a.resolveCashAccount(ctx, portfolio, account)
		if err != nil {
			return usecase.TrnInput{}, err
		}
		input.CashAssetID = cashAsset.ID
	}

	return input, nil
}

func (a *RowAdapter) transformSharesight(
	ctx context.Context,
	portfolio *entity.Portfolio,
	row []string,
) (usecase.TrnInput, error) {
	if len(row) < ssColumns {
		return usecase.TrnInput{}, errs.NewRowError(usecase.FormatSharesight, "row",
			fmt.Sprintf("%d columns", len(row)),
			fmt.Errorf("%w: expected %d columns", errs.ErrInvalidRow, ssColumns))
	}

	tradeDate, err := a.parseTradeDate(usecase.FormatSharesight, cell(row, ssDate))
	if err != nil {
		return usecase.TrnInput{}, err
	}

	asset, err := a.resolveAsset(ctx, portfolio,
		cell(row, ssMarket), cell(row, ssCode), cell(row, ssName))
	if err != nil {
		return usecase.TrnInput{}, err
	}

	input := usecase.TrnInput{
		AssetID:       asset.ID,
		TrnType:       mapSharesightType(cell(row, ssType)),
		TradeCurrency: cell(row, ssCurrency),
		TradeDate:     tradeDate,
		Comments:      cell(row, ssComments),
	}

	if input.Quantity, err = parseCell(usecase.FormatSharesight, "Quantity", cell(row, ssQuantity)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.Price, err = parseCell(usecase.FormatSharesight, "Price", cell(row, ssPrice)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.Fees, err = parseCell(usecase.FormatSharesight, "Brokerage", cell(row, ssBrokerage)); err != nil {
		return usecase.TrnInput{}, err
	}
	if input.TradeAmount, err = parseOptionalCell(usecase.FormatSharesight, "Value", cell(row, ssValue)); err != nil {
		return usecase.TrnInput{}, err
	}

	return input, nil
}

// resolveAsset resolves the traded instrument by (market, code) through the
// asset-ingest collaborator. Codes may arrive bare or, for backward
// compatibility, carrying the "<ownerId>." scoping prefix.
func (a *RowAdapter) resolveAsset(
	ctx context.Context,
	portfolio *entity.Portfolio,
	market, code, name string,
) (*entity.Asset, error) {
	if market == "" || code == "" {
		return nil, errs.NewRowError("", "Market/Code", market+"/"+code,
			fmt.Errorf("%w: market and code are required", errs.ErrInvalidRow))
	}
	bare := entity.OwnerScopedCode(code, portfolio.OwnerID)
	return a.assets.FindOrCreate(ctx, strings.ToUpper(market), strings.ToUpper(bare), name, portfolio.OwnerID)
}

// resolveCashAccount resolves the CashAccount cell, which may hold a raw
// internal identifier (legacy) or an asset code. Identifier lookup runs
// first, then the owner-scoped code lookup, then the global balance assets.
func (a *RowAdapter) resolveCashAccount(
	ctx context.Context,
	portfolio *entity.Portfolio,
	account string,
) (*entity.Asset, error) {
	asset, err := a.assets.GetByID(ctx, account)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, errs.ErrAssetNotFound) {
		return nil, err
	}

	bare := entity.OwnerScopedCode(account, portfolio.OwnerID)
	code := strings.ToUpper(bare)
	asset, err = a.assets.FindByCode(ctx, entity.CashMarket, code, portfolio.OwnerID)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, errs.ErrAssetNotFound) {
		return nil, err
	}

	// Canonical "<CCY> Balance" assets are global, not owner-scoped.
	return a.assets.FindByCode(ctx, entity.CashMarket, code, "")
}

// parseTradeDate parses and validates the trade date: forward-dated actual
// trades are not permitted through row import.
func (a *RowAdapter) parseTradeDate(format, value string) (time.Time, error) {
	var tradeDate time.Time
	var err error
	for _, layout := range dateLayouts {
		if tradeDate, err = time.Parse(layout, value); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, errs.NewRowError(format, "Date", value,
			fmt.Errorf("%w: unparseable date", errs.ErrInvalidRow))
	}

	today := dateOnly(a.timeProvider.Now())
	if tradeDate.After(today) {
		return time.Time{}, errs.NewRowError(format, "Date", value, errs.ErrFutureTradeDate)
	}
	return tradeDate, nil
}

// cell returns the trimmed, unquoted value of a column
func cell(row []string, index int) string {
	return entity.CleanCell(row[index])
}

func parseCell(format, column, value string) (decimal.Decimal, error) {
	d, err := entity.ParseAmount(value)
	if err != nil {
		return decimal.Zero, errs.NewRowError(format, column, value, err)
	}
	return d, nil
}

func parseOptionalCell(format, column, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseCell(format, column, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// mapSharesightType maps broker verbs onto engine transaction types
func mapSharesightType(value string) string {
	switch strings.ToUpper(value) {
	case "BUY":
		return string(entity.TrnBuy)
	case "SELL":
		return string(entity.TrnSell)
	case "SPLIT":
		return string(entity.TrnSplit)
	case "DIV", "DIVI", "DIVIDEND":
		return string(entity.TrnDivi)
	default:
		return value
	}
}

// dateOnly truncates a timestamp to its calendar date in UTC
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
