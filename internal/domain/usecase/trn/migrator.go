package trn

import (
	"context"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/persistence"
)

// Migrator upgrades persisted records that predate the three-rate model.
// It back-fills the rate triad from the historical FX source as of the
// transaction's trade date; amounts and quantities are never altered.
type Migrator struct {
	portfolios persistence.PortfolioRepository
	trns       persistence.TrnRepository
	rates      *RateResolver
	logger     coreport.Logger
}

// NewMigrator creates a new Migrator
func NewMigrator(
	portfolios persistence.PortfolioRepository,
	trns persistence.TrnRepository,
	rates *RateResolver,
	logger coreport.Logger,
) *Migrator {
	return &Migrator{portfolios: portfolios, trns: trns, rates: rates, logger: logger}
}

// Upgrade brings a transaction up to the current schema version and
// persists it. Current records pass through untouched.
func (m *Migrator) Upgrade(ctx context.Context, trn *entity.Trn) (*entity.Trn, error) {
	if !trn.NeedsUpgrade() {
		return trn, nil
	}

	portfolio, err := m.portfolios.GetByID(ctx, trn.PortfolioID)
	if err != nil {
		return nil, err
	}

	// Legacy records carry only the trade/cash currency pair; the triad is
	// recomputed from history in full.
	rates, err := m.rates.Resolve(
		ctx,
		trn.TradeCurrency, trn.CashCurrency, portfolio.Currency, portfolio.Base,
		trn.TradeDate,
		RateSet{},
	)
	if err != nil {
		return nil, err
	}

	trn.TradeCashRate = rates.TradeCash
	trn.TradeBaseRate = rates.TradeBase
	trn.TradePortfolioRate = rates.TradePortfolio
	trn.Version = entity.CurrentVersion

	if err := m.trns.Update(ctx, trn); err != nil {
		return nil, err
	}

	m.logger.Info("Upgraded transaction to current version", map[string]any{
		"trn_id":  trn.ID,
		"version": trn.Version,
	})
	return trn, nil
}
