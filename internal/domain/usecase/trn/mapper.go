package trn

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/google/uuid"
)

// Mapper converts a partially-specified transaction input into a fully
// resolved Trn. It orchestrates the rate resolver and the cash resolver and
// applies the currency and amount defaulting rules.
type Mapper struct {
	assets       integration.AssetFinder
	rates        *RateResolver
	cash         *CashResolver
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewMapper creates a new Mapper
func NewMapper(
	assets integration.AssetFinder,
	rates *RateResolver,
	cash *CashResolver,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Mapper {
	return &Mapper{
		assets:       assets,
		rates:        rates,
		cash:         cash,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// ConvertInput resolves one transaction input against its portfolio.
//
// Defaulting rules, in order:
//   - tradeCurrency: explicit value wins, else the asset's market currency
//   - cashCurrency: explicit value wins, else the cash asset's currency,
//     else the trade currency
//   - tradeAmount: explicit value wins, else |quantity| x price
//   - cashAmount: explicit value wins verbatim, else computed per type
//   - status: explicit value wins, else SETTLED
//
// Possible errors:
// - ErrInvalidTrnType, ErrInvalidStatus, ErrInvalidRequest: validation
// - ErrAssetNotFound: unresolved asset or cashAsset reference
// - ErrRateUnavailable: underivable rate axis
func (m *Mapper) ConvertInput(
	ctx context.Context,
	portfolio *entity.Portfolio,
	input usecase.TrnInput,
) (*entity.Trn, error) {
	trnType, err := entity.ParseTrnType(input.TrnType)
	if err != nil {
		return nil, err
	}
	status, err := entity.ParseTrnStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if input.TradeDate.IsZero() {
		return nil, fmt.Errorf("%w: tradeDate is required", errs.ErrInvalidRequest)
	}
	if input.AssetID == "" {
		return nil, fmt.Errorf("%w: assetId is required", errs.ErrInvalidRequest)
	}

	asset, err := m.assets.GetByID(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}

	tradeCurrency := strings.ToUpper(strings.TrimSpace(input.TradeCurrency))
	if tradeCurrency == "" {
		tradeCurrency = strings.ToUpper(asset.PriceCurrency)
	}

	cashAsset, err := m.cash.ResolveCashAsset(ctx, input, tradeCurrency, trnType)
	if err != nil {
		return nil, err
	}

	cashCurrency := strings.ToUpper(strings.TrimSpace(input.CashCurrency))
	if cashCurrency == "" && cashAsset != nil {
		cashCurrency = strings.ToUpper(cashAsset.PriceCurrency)
	}
	if cashCurrency == "" {
		cashCurrency = tradeCurrency
	}

	rates, err := m.rates.Resolve(
		ctx,
		tradeCurrency, cashCurrency, portfolio.Currency, portfolio.Base,
		input.TradeDate,
		RateSet{
			TradeCash:      input.TradeCashRate,
			TradeBase:      input.TradeBaseRate,
			TradePortfolio: input.TradePortfolioRate,
		},
	)
	if err != nil {
		return nil, err
	}

	// Caller-supplied tradeAmount wins; it may already be fee-adjusted.
	tradeAmount := entity.RoundAmount(input.Quantity.Abs().Mul(input.Price))
	if input.TradeAmount != nil {
		tradeAmount = entity.RoundAmount(*input.TradeAmount)
	}

	cashAmount := ComputeCashImpact(trnType, tradeAmount, rates.TradeCash, input.CashAmount)

	now := m.timeProvider.Now()
	trn := &entity.Trn{
		ID:                 uuid.NewString(),
		CallerRef:          input.CallerRef,
		PortfolioID:        portfolio.ID,
		AssetID:            asset.ID,
		TrnType:            trnType,
		Status:             status,
		Quantity:           input.Quantity,
		Price:              input.Price,
		Fees:               input.Fees,
		TradeAmount:        tradeAmount,
		CashAmount:         cashAmount,
		TradeCurrency:      tradeCurrency,
		CashCurrency:       cashCurrency,
		TradeCashRate:      rates.TradeCash,
		TradeBaseRate:      rates.TradeBase,
		TradePortfolioRate: rates.TradePortfolio,
		TradeDate:          input.TradeDate,
		SettleDate:         input.SettleDate,
		SubAccounts:        input.SubAccounts,
		Comments:           input.Comments,
		Version:            entity.CurrentVersion,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if cashAsset != nil {
		trn.CashAssetID = cashAsset.ID
	}

	m.logger.Debug("Resolved transaction input", map[string]any{
		"portfolio_id": portfolio.ID,
		"asset_id":     asset.ID,
		"trn_type":     string(trnType),
		"trade_amount": trn.TradeAmount.String(),
		"cash_amount":  trn.CashAmount.String(),
	})
	return trn, nil
}
