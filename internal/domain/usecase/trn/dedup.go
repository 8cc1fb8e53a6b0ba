package trn

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/persistence"
)

// DefaultDedupWindowDays is the default half-width of the date-proximity
// window used to spot an already-recorded corporate event. Event dates are
// sometimes revised between runs of the upstream source, so a strict unique
// key would double-book; the window is configurable because the exact
// tolerance is a heuristic, not a documented business rule.
const DefaultDedupWindowDays = 20

// Dedup answers whether an event transaction has already been recorded
// close enough in time to be the same corporate event.
type Dedup struct {
	trns       persistence.TrnRepository
	windowDays int
}

// NewDedup creates a new Dedup with the given window half-width in days.
// A non-positive value falls back to the default.
func NewDedup(trns persistence.TrnRepository, windowDays int) *Dedup {
	if windowDays <= 0 {
		windowDays = DefaultDedupWindowDays
	}
	return &Dedup{trns: trns, windowDays: windowDays}
}

// ExistingEvent reports whether a transaction of the same portfolio, asset
// and type already exists with a trade date within the window.
func (d *Dedup) ExistingEvent(
	ctx context.Context,
	portfolioID, assetID string,
	trnType entity.TrnType,
	tradeDate time.Time,
) (bool, error) {
	window := time.Duration(d.windowDays) * 24 * time.Hour
	existing, err := d.trns.FindEventsInWindow(
		ctx, portfolioID, assetID, trnType,
		tradeDate.Add(-window), tradeDate.Add(window))
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}
