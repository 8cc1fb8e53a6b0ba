package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FxRateRepository implements integration.FxRateSource from the stored
// fx_rates history. The most recent observation on or before the requested
// date answers the query; the inverse pair is consulted before giving up.
type FxRateRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	retryConfig database.RetryConfig
}

// NewFxRateRepository creates a new FxRateRepository instance
func NewFxRateRepository(db *gorm.DB, logger coreport.Logger) *FxRateRepository {
	return &FxRateRepository{db: db, logger: logger, retryConfig: database.DefaultRetryConfig()}
}

// GetRate returns how many units of to one unit of from bought as of the
// given date
func (r *FxRateRepository) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return entity.One, nil
	}

	rate, err := r.lookup(ctx, from, to, asOf)
	if err == nil {
		return entity.RoundRate(rate), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	// No direct observation; try the inverse pair.
	inverse, err := r.lookup(ctx, to, from, asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("No FX observation for pair", map[string]any{
				"from":  from,
				"to":    to,
				"as_of": asOf.Format("2006-01-02"),
			})
			return decimal.Zero, errs.NewRateError(from, to, asOf, errs.ErrRateUnavailable)
		}
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
	if inverse.IsZero() {
		return decimal.Zero, errs.NewRateError(from, to, asOf, errs.ErrRateUnavailable)
	}
	return entity.RoundRate(entity.One.Div(inverse)), nil
}

// lookup reads are idempotent, so transient failures are retried.
func (r *FxRateRepository) lookup(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	var rateModel model.FxRate
	err := database.RetryOnTransientError(ctx, r.retryConfig, func() error {
		return r.db.WithContext(ctx).
			Where("from_ccy = ? AND to_ccy = ? AND as_of <= ?", from, to, asOf).
			Order("as_of desc").
			First(&rateModel).Error
	}, r.logger)
	if err != nil {
		return decimal.Zero, err
	}
	return rateModel.Rate, nil
}
