package trn

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc    *Service
	repo   *fakeTrnRepo
	finder *fakeAssetFinder
	fx     *fakeFxRateSource
}

func newServiceFixture() *serviceFixture {
	portfolio := &entity.Portfolio{
		ID:       "pf-1",
		Code:     "GROWTH",
		Currency: "NZD",
		Base:     "NZD",
		OwnerID:  "owner-1",
	}
	finder := newFakeAssetFinder(&entity.Asset{
		ID:            "asset-apple",
		Code:          "AAPL",
		Market:        "NASDAQ",
		PriceCurrency: "USD",
		OwnerID:       "owner-1",
	})
	fx := newFakeFxRateSource()
	fx.set("USD", "NZD", "1.52")
	repo := &fakeTrnRepo{}
	tp := &fixedTimeProvider{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewTrnService(
		&fakePortfolioRepo{portfolios: []*entity.Portfolio{portfolio}},
		repo, finder, fx, tp, nopLogger{}, 20)
	return &serviceFixture{svc: svc, repo: repo, finder: finder, fx: fx}
}

func buyInput(callerID string) usecase.TrnInput {
	input := usecase.TrnInput{
		AssetID:      "asset-apple",
		TrnType:      "BUY",
		Quantity:     mustDecimal("10"),
		Price:        mustDecimal("150.00"),
		CashCurrency: "NZD",
		TradeDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	if callerID != "" {
		input.CallerRef = entity.CallerRef{Provider: "owner-1", Batch: "20240315", CallerID: callerID}
	}
	return input
}

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Batch of inputs is resolved and persisted", func(t *testing.T) {
		f := newServiceFixture()

		trns, err := f.svc.Submit(ctx, usecase.TrnRequest{
			PortfolioID: "pf-1",
			Data:        []usecase.TrnInput{buyInput("row-1"), buyInput("row-2")},
		})

		require.NoError(t, err)
		require.Len(t, trns, 2)
		assert.Len(t, f.repo.trns, 2)
		assert.Equal(t, "pf-1", trns[0].PortfolioID)
		assert.True(t, trns[0].CashAmount.Equal(mustDecimal("-2280.00")))
	})

	t.Run("Duplicate caller reference rejects the item", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.svc.Submit(ctx, usecase.TrnRequest{
			PortfolioID: "pf-1",
			Data:        []usecase.TrnInput{buyInput("row-1")},
		})
		require.NoError(t, err)

		trns, err := f.svc.Submit(ctx, usecase.TrnRequest{
			PortfolioID: "pf-1",
			Data:        []usecase.TrnInput{buyInput("row-9"), buyInput("row-1")},
		})

		assert.ErrorIs(t, err, errs.ErrDuplicateTrn)
		var trnErr *errs.TrnError
		assert.ErrorAs(t, err, &trnErr)
		// The failure stops the batch but earlier items stay persisted.
		assert.Len(t, trns, 1)
		assert.Len(t, f.repo.trns, 2)
	})

	t.Run("Empty caller references never collide", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.svc.Submit(ctx, usecase.TrnRequest{
			PortfolioID: "pf-1",
			Data:        []usecase.TrnInput{buyInput(""), buyInput("")},
		})

		require.NoError(t, err)
		assert.Len(t, f.repo.trns, 2)
	})

	t.Run("Unknown portfolio", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.svc.Submit(ctx, usecase.TrnRequest{
			PortfolioID: "pf-missing",
			Data:        []usecase.TrnInput{buyInput("row-1")},
		})

		assert.ErrorIs(t, err, errs.ErrPortfolioNotFound)
	})
}

func TestServiceImportRow(t *testing.T) {
	ctx := context.Background()

	t.Run("Row is transformed, resolved and persisted", func(t *testing.T) {
		f := newServiceFixture()

		trn, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			Portfolio:    "GROWTH",
			ImportFormat: usecase.FormatBC,
			Row:          bcRow(),
		})

		require.NoError(t, err)
		require.NotNil(t, trn)
		assert.Equal(t, "pf-1", trn.PortfolioID)
		assert.Equal(t, "asset-apple", trn.AssetID)
		assert.Equal(t, entity.TrnBuy, trn.TrnType)
		assert.Len(t, f.repo.trns, 1)
	})

	t.Run("Portfolio id is accepted when the code does not match", func(t *testing.T) {
		f := newServiceFixture()

		trn, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			Portfolio:    "pf-1",
			ImportFormat: usecase.FormatBC,
			Row:          bcRow(),
		})

		require.NoError(t, err)
		assert.Equal(t, "pf-1", trn.PortfolioID)
	})

	t.Run("Replayed row is dropped", func(t *testing.T) {
		f := newServiceFixture()
		req := usecase.TrustedTrnImportRequest{
			Portfolio:    "GROWTH",
			ImportFormat: usecase.FormatBC,
			Row:          bcRow(),
		}
		_, err := f.svc.ImportRow(ctx, req)
		require.NoError(t, err)

		trn, err := f.svc.ImportRow(ctx, req)

		require.NoError(t, err)
		assert.Nil(t, trn)
		assert.Len(t, f.repo.trns, 1)
	})

	t.Run("Event near an existing one is dropped", func(t *testing.T) {
		f := newServiceFixture()
		row := bcRow()
		row[bcType] = "DIVI"
		row[bcCallerID] = "divi-1"
		_, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			Portfolio: "GROWTH", ImportFormat: usecase.FormatBC, Row: row,
		})
		require.NoError(t, err)

		// Same dividend announced again with a revised date and a fresh
		// caller reference.
		replay := bcRow()
		replay[bcType] = "DIVI"
		replay[bcCallerID] = "divi-2"
		replay[bcDate] = "2024-03-20"
		trn, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			Portfolio: "GROWTH", ImportFormat: usecase.FormatBC, Row: replay,
		})

		require.NoError(t, err)
		assert.Nil(t, trn)
		assert.Len(t, f.repo.trns, 1)
	})

	t.Run("Losing a caller-ref race is not an error", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.createErr = errs.ErrDuplicateTrn

		trn, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			Portfolio:    "GROWTH",
			ImportFormat: usecase.FormatBC,
			Row:          bcRow(),
		})

		require.NoError(t, err)
		assert.Nil(t, trn)
	})

	t.Run("Missing portfolio reference", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.svc.ImportRow(ctx, usecase.TrustedTrnImportRequest{
			ImportFormat: usecase.FormatBC,
			Row:          bcRow(),
		})

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestServiceCashLedger(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Returns the cash movements and upgrades legacy rows", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.trns = []*entity.Trn{
			{
				ID: "trn-1", PortfolioID: "pf-1", AssetID: "asset-apple",
				CashAssetID: "nzd-balance", TrnType: entity.TrnBuy,
				Status: entity.StatusSettled, TradeCurrency: "USD", CashCurrency: "NZD",
				TradeDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				Version:   entity.CurrentVersion,
			},
			{
				ID: "trn-legacy", PortfolioID: "pf-1", AssetID: "asset-apple",
				CashAssetID: "nzd-balance", TrnType: entity.TrnSell,
				Status: entity.StatusSettled, TradeCurrency: "USD", CashCurrency: "NZD",
				TradeDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Version:   "2",
			},
		}

		trns, err := f.svc.CashLedger(ctx, "pf-1", "nzd-balance", asOf)

		require.NoError(t, err)
		require.Len(t, trns, 2)
		for _, trn := range trns {
			assert.Equal(t, entity.CurrentVersion, trn.Version)
		}
	})

	t.Run("FX_BUY appears in both currency ledgers", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.trns = []*entity.Trn{
			{
				ID: "trn-deposit", PortfolioID: "pf-1", AssetID: "nzd-balance",
				CashAssetID: "nzd-balance", TrnType: entity.TrnDeposit,
				Status: entity.StatusSettled, TradeCurrency: "NZD", CashCurrency: "NZD",
				TradeAmount: mustDecimal("500.00"), CashAmount: mustDecimal("500.00"),
				TradeDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Version:   entity.CurrentVersion,
			},
			{
				// Bought 1000.00 NZD, sold 1520.00 USD.
				ID: "trn-fx", PortfolioID: "pf-1", AssetID: "nzd-balance",
				CashAssetID: "usd-balance", TrnType: entity.TrnFxBuy,
				Status: entity.StatusSettled, TradeCurrency: "NZD", CashCurrency: "USD",
				TradeAmount: mustDecimal("1000.00"), CashAmount: mustDecimal("-1520.00"),
				TradeDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Version:   entity.CurrentVersion,
			},
		}

		nzd, err := f.svc.CashLedger(ctx, "pf-1", "nzd-balance", asOf)
		require.NoError(t, err)
		require.Len(t, nzd, 2)

		usd, err := f.svc.CashLedger(ctx, "pf-1", "usd-balance", asOf)
		require.NoError(t, err)
		require.Len(t, usd, 1)
		assert.Equal(t, "trn-fx", usd[0].ID)
		assert.True(t, usd[0].LedgerAmount("usd-balance").Equal(mustDecimal("-1520.00")))
		assert.True(t, usd[0].LedgerAmount("nzd-balance").Equal(mustDecimal("1000.00")))
	})

	t.Run("Unknown portfolio", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.svc.CashLedger(ctx, "pf-missing", "nzd-balance", asOf)

		assert.ErrorIs(t, err, errs.ErrPortfolioNotFound)
	})
}

func TestServiceExport(t *testing.T) {
	f := newServiceFixture()

	err := f.svc.Export(context.Background(), "pf-missing", nil)

	assert.ErrorIs(t, err, errs.ErrPortfolioNotFound)
}

func TestStatusCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", errs.ErrTrnNotFound, http.StatusNotFound},
		{"portfolio not found", errs.ErrPortfolioNotFound, http.StatusNotFound},
		{"duplicate", errs.NewTrnError("a.b.c", "pf-1", "BUY", "dup", errs.ErrDuplicateTrn), http.StatusConflict},
		{"validation", errs.ErrInvalidTrnType, http.StatusBadRequest},
		{"rate unavailable", errs.NewRateError("USD", "NZD", time.Time{}, errs.ErrRateUnavailable), http.StatusUnprocessableEntity},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCodeFor(tt.err))
		})
	}
}
