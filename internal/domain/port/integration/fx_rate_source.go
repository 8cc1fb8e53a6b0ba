package integration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FxRateSource answers "1 unit of from = N units of to as of date" queries.
// The engine never substitutes 1 or 0 when the source cannot answer; the
// failure surfaces as ErrRateUnavailable.
type FxRateSource interface {
	GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error)
}
