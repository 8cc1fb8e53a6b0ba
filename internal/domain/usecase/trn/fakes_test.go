package trn

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// Hand-rolled fakes for the engine's ports, shared across the package tests.

type nopLogger struct{}

func (nopLogger) SetLevel(coreport.LogLevel)          {}
func (nopLogger) GetLevel() coreport.LogLevel         { return coreport.LogLevelError }
func (nopLogger) Debug(string, map[string]any)        {}
func (nopLogger) Info(string, map[string]any)         {}
func (nopLogger) Warn(string, map[string]any)         {}
func (nopLogger) Error(string, map[string]any)        {}
func (nopLogger) Flush() error                        { return nil }

type fixedTimeProvider struct {
	now time.Time
}

func (f *fixedTimeProvider) Now() time.Time                  { return f.now }
func (f *fixedTimeProvider) Since(t time.Time) coreport.Duration {
	return coreport.Duration(f.now.Sub(t))
}
func (f *fixedTimeProvider) Until(t time.Time) coreport.Duration {
	return coreport.Duration(t.Sub(f.now))
}
func (f *fixedTimeProvider) Sleep(coreport.Duration) {}
func (f *fixedTimeProvider) WithTimeout(ctx context.Context, timeout coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
func (f *fixedTimeProvider) ParseDuration(s string) (coreport.Duration, error) {
	d, err := time.ParseDuration(s)
	return coreport.Duration(d), err
}

type fakeAssetFinder struct {
	assets  map[string]*entity.Asset // by id
	nextID  int
	created []string // "market/code" of each FindOrCreate miss
}

func newFakeAssetFinder(assets ...*entity.Asset) *fakeAssetFinder {
	f := &fakeAssetFinder{assets: map[string]*entity.Asset{}}
	for _, a := range assets {
		f.assets[a.ID] = a
	}
	return f
}

func (f *fakeAssetFinder) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	if a, ok := f.assets[id]; ok {
		return a, nil
	}
	return nil, errs.ErrAssetNotFound
}

func (f *fakeAssetFinder) FindByCode(_ context.Context, market, code, ownerID string) (*entity.Asset, error) {
	for _, a := range f.assets {
		if a.Market == market && a.Code == code && a.OwnerID == ownerID {
			return a, nil
		}
	}
	return nil, errs.ErrAssetNotFound
}

func (f *fakeAssetFinder) FindOrCreate(ctx context.Context, market, code, name, ownerID string) (*entity.Asset, error) {
	if a, err := f.FindByCode(ctx, market, code, ownerID); err == nil {
		return a, nil
	}
	f.nextID++
	a := &entity.Asset{
		ID:      "asset-" + strconv.Itoa(f.nextID),
		Code:    code,
		Name:    name,
		Market:  market,
		OwnerID: ownerID,
	}
	if market == entity.CashMarket {
		a.PriceCurrency = code
	}
	f.assets[a.ID] = a
	f.created = append(f.created, market+"/"+code)
	return a, nil
}

type fakeFxRateSource struct {
	rates map[string]decimal.Decimal // "FROM/TO"
	calls []string
}

func newFakeFxRateSource() *fakeFxRateSource {
	return &fakeFxRateSource{rates: map[string]decimal.Decimal{}}
}

func (f *fakeFxRateSource) set(from, to, rate string) {
	f.rates[from+"/"+to] = decimal.RequireFromString(rate)
}

func (f *fakeFxRateSource) GetRate(_ context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	pair := from + "/" + to
	f.calls = append(f.calls, pair)
	if from == to {
		return entity.One, nil
	}
	if rate, ok := f.rates[pair]; ok {
		return rate, nil
	}
	return decimal.Zero, errs.NewRateError(from, to, asOf, errs.ErrRateUnavailable)
}

type fakePortfolioRepo struct {
	portfolios []*entity.Portfolio
}

func (f *fakePortfolioRepo) GetByID(_ context.Context, id string) (*entity.Portfolio, error) {
	for _, p := range f.portfolios {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errs.ErrPortfolioNotFound
}

func (f *fakePortfolioRepo) GetByCode(_ context.Context, code string) (*entity.Portfolio, error) {
	for _, p := range f.portfolios {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, errs.ErrPortfolioNotFound
}

type fakeTrnRepo struct {
	trns      []*entity.Trn
	createErr error
	updateErr error
}

func (f *fakeTrnRepo) Create(_ context.Context, trn *entity.Trn) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.trns = append(f.trns, trn)
	return nil
}

func (f *fakeTrnRepo) Update(_ context.Context, trn *entity.Trn) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, t := range f.trns {
		if t.ID == trn.ID {
			f.trns[i] = trn
			return nil
		}
	}
	return errs.ErrTrnNotFound
}

func (f *fakeTrnRepo) GetByID(_ context.Context, id string) (*entity.Trn, error) {
	for _, t := range f.trns {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errs.ErrTrnNotFound
}

func (f *fakeTrnRepo) ExistsByCallerRef(_ context.Context, ref entity.CallerRef) (bool, error) {
	for _, t := range f.trns {
		if t.CallerRef == ref {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTrnRepo) FindByPortfolio(_ context.Context, portfolioID string) ([]*entity.Trn, error) {
	var out []*entity.Trn
	for _, t := range f.trns {
		if t.PortfolioID == portfolioID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrnRepo) FindDueEvents(_ context.Context, asOf time.Time) ([]*entity.Trn, error) {
	var out []*entity.Trn
	for _, t := range f.trns {
		if t.Status == entity.StatusProposed && t.TrnType.IsEvent() && !t.TradeDate.After(asOf) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrnRepo) FindCashLedger(_ context.Context, portfolioID, cashAssetID string, asOf time.Time) ([]*entity.Trn, error) {
	var out []*entity.Trn
	for _, t := range f.trns {
		if t.PortfolioID == portfolioID && !t.TradeDate.After(asOf) && t.InCashLedger(cashAssetID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrnRepo) FindEventsInWindow(
	_ context.Context,
	portfolioID, assetID string,
	trnType entity.TrnType,
	from, to time.Time,
) ([]*entity.Trn, error) {
	var out []*entity.Trn
	for _, t := range f.trns {
		if t.PortfolioID == portfolioID && t.AssetID == assetID && t.TrnType == trnType &&
			!t.TradeDate.Before(from) && !t.TradeDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// mustDecimal panics on malformed literals; test data only
func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal literal %q: %v", s, err))
	}
	return d
}

func decimalPtr(s string) *decimal.Decimal {
	d := mustDecimal(s)
	return &d
}
