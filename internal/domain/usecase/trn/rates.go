package trn

import (
	"context"
	"strings"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/shopspring/decimal"
)

// RateSet carries the caller-supplied rates of a transaction input.
// A nil axis is unknown and will be derived.
type RateSet struct {
	TradeCash      *decimal.Decimal
	TradeBase      *decimal.Decimal
	TradePortfolio *decimal.Decimal
}

// ResolvedRates is the complete, mutually consistent rate triad, each axis
// expressing "1 unit of trade currency = N units of the axis currency".
type ResolvedRates struct {
	TradeCash      decimal.Decimal
	TradeBase      decimal.Decimal
	TradePortfolio decimal.Decimal
}

// rateAxis tracks the resolution state of one axis of the triad
type rateAxis struct {
	target   string
	supplied *decimal.Decimal
	resolved *decimal.Decimal
}

// RateResolver fills in the missing axes of a rate triad. Supplied rates are
// authoritative and never recomputed; identical currencies resolve to 1;
// axes sharing a target currency share a rate (all three have the trade
// currency as their base); anything else is asked of the FX source.
type RateResolver struct {
	fx integration.FxRateSource
}

// NewRateResolver creates a new RateResolver
func NewRateResolver(fx integration.FxRateSource) *RateResolver {
	return &RateResolver{fx: fx}
}

// Resolve derives the full rate triad for the given currency buckets as of
// the trade date.
//
// Possible errors:
// - ErrRateUnavailable: If an axis is underivable and the FX source cannot answer
func (r *RateResolver) Resolve(
	ctx context.Context,
	tradeCcy, cashCcy, portfolioCcy, baseCcy string,
	tradeDate time.Time,
	known RateSet,
) (ResolvedRates, error) {
	tradeCcy = strings.ToUpper(tradeCcy)

	axes := []rateAxis{
		{target: strings.ToUpper(cashCcy), supplied: known.TradeCash},
		{target: strings.ToUpper(baseCcy), supplied: known.TradeBase},
		{target: strings.ToUpper(portfolioCcy), supplied: known.TradePortfolio},
	}

	// Supplied rates and same-currency axes first, so the remaining axes can
	// copy from them.
	for i := range axes {
		if axes[i].supplied != nil {
			rate := entity.RoundRate(*axes[i].supplied)
			axes[i].resolved = &rate
			continue
		}
		if axes[i].target == tradeCcy {
			one := entity.One
			axes[i].resolved = &one
		}
	}

	for i := range axes {
		if axes[i].resolved != nil {
			continue
		}
		if copied := copyAxis(axes, i); copied != nil {
			axes[i].resolved = copied
			continue
		}
		rate, err := r.fx.GetRate(ctx, tradeCcy, axes[i].target, tradeDate)
		if err != nil {
			return ResolvedRates{}, errs.NewRateError(tradeCcy, axes[i].target, tradeDate, err)
		}
		rounded := entity.RoundRate(rate)
		axes[i].resolved = &rounded
	}

	return ResolvedRates{
		TradeCash:      *axes[0].resolved,
		TradeBase:      *axes[1].resolved,
		TradePortfolio: *axes[2].resolved,
	}, nil
}

// copyAxis returns the rate of another axis with the same target currency,
// if one is already resolved.
func copyAxis(axes []rateAxis, self int) *decimal.Decimal {
	for i := range axes {
		if i == self || axes[i].resolved == nil {
			continue
		}
		if axes[i].target == axes[self].target {
			rate := *axes[i].resolved
			return &rate
		}
	}
	return nil
}
