package trn

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

// CashResolver resolves the settlement-side asset of a transaction and
// computes its signed cash impact.
type CashResolver struct {
	assets integration.AssetFinder
}

// NewCashResolver creates a new CashResolver
func NewCashResolver(assets integration.AssetFinder) *CashResolver {
	return &CashResolver{assets: assets}
}

// ResolveCashAsset resolves the cash asset for an input. Precedence: an
// explicit cashAssetId always wins and must resolve; otherwise a canonical
// "<CCY> Balance" asset is found or created, keyed by currency code.
// Types with no cash impact and no cash hints resolve to nil.
//
// Possible errors:
// - ErrAssetNotFound: If the explicit cashAssetId doesn't resolve
func (c *CashResolver) ResolveCashAsset(
	ctx context.Context,
	input usecase.TrnInput,
	tradeCurrency string,
	trnType entity.TrnType,
) (*entity.Asset, error) {
	if input.CashAssetID != "" {
		return c.assets.GetByID(ctx, input.CashAssetID)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.CashCurrency))
	if currency == "" {
		if trnType.CashSign() == 0 {
			return nil, nil
		}
		currency = strings.ToUpper(tradeCurrency)
	}

	return c.assets.FindOrCreate(
		ctx, entity.CashMarket, currency, entity.CashBalanceName(currency), "")
}

// ComputeCashImpact returns the signed cash-currency amount a transaction
// posts against its cash asset. A caller-supplied cashAmount is trusted
// verbatim - upstream systems may have computed the precise effect
// including fees and slippage. Otherwise the sign is a function of the
// transaction type applied to tradeAmount converted at tradeCashRate.
func ComputeCashImpact(
	trnType entity.TrnType,
	tradeAmount, tradeCashRate decimal.Decimal,
	callerCashAmount *decimal.Decimal,
) decimal.Decimal {
	if callerCashAmount != nil {
		return *callerCashAmount
	}

	sign := trnType.CashSign()
	if sign == 0 {
		return decimal.Zero
	}

	impact := entity.MulAmount(tradeAmount, tradeCashRate)
	if sign < 0 {
		return impact.Neg()
	}
	return impact
}
