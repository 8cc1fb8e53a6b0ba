package trn

import (
	"context"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/persistence"
)

// Sweeper advances due PROPOSED event transactions (DIVI/SPLIT) to SETTLED.
// Trade types are never touched. The sweep is idempotent: already settled or
// not-yet-due transactions are simply not selected, so re-running with
// nothing due is a safe no-op.
type Sweeper struct {
	trns         persistence.TrnRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSweeper creates a new Sweeper
func NewSweeper(trns persistence.TrnRepository, timeProvider coreport.TimeProvider, logger coreport.Logger) *Sweeper {
	return &Sweeper{trns: trns, timeProvider: timeProvider, logger: logger}
}

// AutoSettle settles every due event transaction and returns the number
// settled. A failure on one transaction is logged and skipped; the sweep
// continues with the remainder and the count reflects successes only.
func (s *Sweeper) AutoSettle(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()
	due, err := s.trns.FindDueEvents(ctx, dateOnly(now))
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, t := range due {
		if err := t.Settle(now); err != nil {
			s.logger.Warn("Skipping settlement", map[string]any{
				"trn_id": t.ID,
				"error":  err.Error(),
			})
			continue
		}
		if err := s.trns.Update(ctx, t); err != nil {
			s.logger.Error("Failed to settle transaction", map[string]any{
				"trn_id":     t.ID,
				"trn_type":   string(t.TrnType),
				"trade_date": t.TradeDate.Format("2006-01-02"),
				"error":      err.Error(),
			})
			continue
		}
		settled++
	}

	if settled > 0 {
		s.logger.Info("Auto-settlement sweep completed", map[string]any{
			"due":     len(due),
			"settled": settled,
		})
	}
	return settled, nil
}
