package trn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/integration"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
)

// Service is the transaction engine façade. It ties the mapper, row adapter,
// exporter, sweeper, ladder query and dedup together behind the TrnUseCase
// port. All computation is synchronous per call; the engine holds no state.
type Service struct {
	portfolios persistence.PortfolioRepository
	trns       persistence.TrnRepository
	mapper     *Mapper
	adapter    *RowAdapter
	exporter   *Exporter
	sweeper    *Sweeper
	dedup      *Dedup
	migrator   *Migrator
	logger     coreport.Logger
}

// NewTrnService creates the fully wired transaction service
func NewTrnService(
	portfolios persistence.PortfolioRepository,
	trns persistence.TrnRepository,
	assets integration.AssetFinder,
	fx integration.FxRateSource,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	dedupWindowDays int,
) *Service {
	rates := NewRateResolver(fx)
	cash := NewCashResolver(assets)
	svc := &Service{
		portfolios: portfolios,
		trns:       trns,
		mapper:     NewMapper(assets, rates, cash, timeProvider, logger),
		adapter:    NewRowAdapter(assets, timeProvider, logger),
		exporter:   NewExporter(trns, assets, logger),
		sweeper:    NewSweeper(trns, timeProvider, logger),
		dedup:      NewDedup(trns, dedupWindowDays),
		migrator:   NewMigrator(portfolios, trns, rates, logger),
		logger:     logger,
	}
	logger.Info("Transaction engine initialized", map[string]any{
		"dedup_window_days": svc.dedup.windowDays,
	})
	return svc
}

// Submit resolves and persists the inputs of a direct request. Items are
// processed sequentially; a failure stops the batch but leaves earlier
// successes persisted.
func (s *Service) Submit(ctx context.Context, req usecase.TrnRequest) ([]*entity.Trn, error) {
	portfolio, err := s.portfolios.GetByID(ctx, req.PortfolioID)
	if err != nil {
		return nil, err
	}

	results := make([]*entity.Trn, 0, len(req.Data))
	for _, input := range req.Data {
		if !input.CallerRef.IsEmpty() {
			exists, err := s.trns.ExistsByCallerRef(ctx, input.CallerRef)
			if err != nil {
				return results, err
			}
			if exists {
				return results, errs.NewTrnError(
					input.CallerRef.Key(), portfolio.ID, input.TrnType,
					"caller reference already recorded", errs.ErrDuplicateTrn)
			}
		}

		trn, err := s.mapper.ConvertInput(ctx, portfolio, input)
		if err != nil {
			return results, err
		}
		if err := s.trns.Create(ctx, trn); err != nil {
			return results, err
		}
		results = append(results, trn)
	}
	return results, nil
}

// ImportRow transforms one trusted delimited row and persists the resolved
// transaction. Replayed rows - same caller reference, or an event already
// recorded within the dedup window - are dropped and return nil.
func (s *Service) ImportRow(ctx context.Context, req usecase.TrustedTrnImportRequest) (*entity.Trn, error) {
	portfolio, err := s.resolvePortfolio(ctx, req.Portfolio)
	if err != nil {
		return nil, err
	}

	input, err := s.adapter.Transform(ctx, portfolio, req.ImportFormat, req.Row)
	if err != nil {
		return nil, err
	}

	if !input.CallerRef.IsEmpty() {
		exists, err := s.trns.ExistsByCallerRef(ctx, input.CallerRef)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Debug("Dropping replayed row", map[string]any{
				"caller_ref": input.CallerRef.Key(),
			})
			return nil, nil
		}
	}

	trnType, err := entity.ParseTrnType(input.TrnType)
	if err != nil {
		return nil, err
	}
	if trnType.IsEvent() {
		exists, err := s.dedup.ExistingEvent(ctx, portfolio.ID, input.AssetID, trnType, input.TradeDate)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Info("Dropping event already recorded within dedup window", map[string]any{
				"portfolio_id": portfolio.ID,
				"asset_id":     input.AssetID,
				"trn_type":     string(trnType),
				"trade_date":   input.TradeDate.Format("2006-01-02"),
			})
			return nil, nil
		}
	}

	trn, err := s.mapper.ConvertInput(ctx, portfolio, input)
	if err != nil {
		return nil, err
	}
	if err := s.trns.Create(ctx, trn); err != nil {
		// A concurrent consumer won the race on the caller reference.
		if errors.Is(err, errs.ErrDuplicateTrn) {
			return nil, nil
		}
		return nil, err
	}
	return trn, nil
}

// CashLedger returns the transactions that moved the given cash asset,
// newest first. Records read back at an old schema version are upgraded in
// place before being returned.
func (s *Service) CashLedger(ctx context.Context, portfolioID, cashAssetID string, asOf time.Time) ([]*entity.Trn, error) {
	if _, err := s.portfolios.GetByID(ctx, portfolioID); err != nil {
		return nil, err
	}

	trns, err := s.trns.FindCashLedger(ctx, portfolioID, cashAssetID, asOf)
	if err != nil {
		return nil, err
	}
	for i, t := range trns {
		upgraded, err := s.migrator.Upgrade(ctx, t)
		if err != nil {
			return nil, err
		}
		trns[i] = upgraded
	}
	return trns, nil
}

// AutoSettle runs the settlement sweep once
func (s *Service) AutoSettle(ctx context.Context) (int, error) {
	return s.sweeper.AutoSettle(ctx)
}

// Export writes the portfolio's transactions in the BC format
func (s *Service) Export(ctx context.Context, portfolioID string, w io.Writer) error {
	if _, err := s.portfolios.GetByID(ctx, portfolioID); err != nil {
		return err
	}
	return s.exporter.Export(ctx, portfolioID, w)
}

// resolvePortfolio accepts either the human-readable code (preferred in
// import envelopes) or the raw portfolio id.
func (s *Service) resolvePortfolio(ctx context.Context, ref string) (*entity.Portfolio, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: portfolio is required", errs.ErrInvalidRequest)
	}
	portfolio, err := s.portfolios.GetByCode(ctx, ref)
	if err == nil {
		return portfolio, nil
	}
	if !errors.Is(err, errs.ErrPortfolioNotFound) {
		return nil, err
	}
	return s.portfolios.GetByID(ctx, ref)
}

// StatusCodeFor maps domain errors onto HTTP status codes
func StatusCodeFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errs.IsDuplicateTrnError(err):
		return http.StatusConflict
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errs.IsRateUnavailableError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
