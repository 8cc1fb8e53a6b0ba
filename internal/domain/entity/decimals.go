package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// Decimal scales used when a value is finalized for storage or display.
// Intermediate arithmetic keeps full precision.
const (
	// RateScale is the fixed scale for FX rates
	RateScale int32 = 6
	// AmountScale is the fixed scale for display-grade monetary totals
	AmountScale int32 = 2
)

// One is the identity rate for same-currency axes
var One = decimal.NewFromInt(1)

// ParseAmount parses a caller-supplied decimal string, tolerating surrounding
// whitespace and quote characters from hand-exported spreadsheets.
// An empty cell parses to zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := CleanCell(value)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", errs.ErrInvalidAmount, value)
	}
	return d, nil
}

// CleanCell strips surrounding whitespace and quote characters from a cell value
func CleanCell(value string) string {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.Trim(cleaned, `"'`)
	return strings.TrimSpace(cleaned)
}

// RoundAmount rounds a monetary total to the display scale
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// RoundRate rounds an FX rate to the rate scale
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}

// MulAmount multiplies an amount by a rate and rounds to the display scale
func MulAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundAmount(amount.Mul(rate))
}
