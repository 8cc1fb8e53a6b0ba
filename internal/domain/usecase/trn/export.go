package trn

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/persistence"
)

// Exporter writes transactions as delimited rows in the BC column order.
// The output re-imports through the RowAdapter without loss for every field
// the engine understands.
type Exporter struct {
	trns   persistence.TrnRepository
	assets integration.AssetFinder
	logger coreport.Logger
}

// NewExporter creates a new Exporter
func NewExporter(trns persistence.TrnRepository, assets integration.AssetFinder, logger coreport.Logger) *Exporter {
	return &Exporter{trns: trns, assets: assets, logger: logger}
}

// Export writes the header and one row per transaction of the portfolio
func (e *Exporter) Export(ctx context.Context, portfolioID string, w io.Writer) error {
	trns, err := e.trns.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(BCHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, t := range trns {
		asset, err := e.assets.GetByID(ctx, t.AssetID)
		if err != nil {
			return err
		}
		if err := cw.Write(ExportRow(t, asset)); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	e.logger.Info("Exported portfolio transactions", map[string]any{
		"portfolio_id": portfolioID,
		"rows":         len(trns),
	})
	return nil
}

// ExportRow renders one transaction in the BC column order. The CashAccount
// column carries the raw cash asset id, which the import path resolves
// through its identifier-first lookup.
func ExportRow(t *entity.Trn, asset *entity.Asset) []string {
	row := make([]string, bcColumns)
	row[bcBatch] = t.CallerRef.Batch
	row[bcCallerID] = t.CallerRef.CallerID
	row[bcType] = string(t.TrnType)
	row[bcMarket] = asset.Market
	row[bcCode] = asset.Code
	row[bcName] = asset.Name
	row[bcCashAccount] = t.CashAssetID
	row[bcCashCurrency] = t.CashCurrency
	row[bcDate] = t.TradeDate.Format("2006-01-02")
	row[bcQuantity] = t.Quantity.String()
	row[bcBaseRate] = t.TradeBaseRate.String()
	row[bcTradeCurrency] = t.TradeCurrency
	row[bcPrice] = t.Price.String()
	row[bcFees] = t.Fees.String()
	row[bcPortfolioRate] = t.TradePortfolioRate.String()
	row[bcTradeAmount] = t.TradeAmount.String()
	row[bcCashAmount] = t.CashAmount.String()
	row[bcComments] = t.Comments
	row[bcStatus] = string(t.Status)
	return row
}
