package trn

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bcRow() []string {
	row := make([]string, bcColumns)
	row[bcBatch] = "20240315"
	row[bcCallerID] = "row-7"
	row[bcType] = "BUY"
	row[bcMarket] = "NASDAQ"
	row[bcCode] = "AAPL"
	row[bcName] = "Apple Inc"
	row[bcCashCurrency] = "NZD"
	row[bcDate] = "2024-03-15"
	row[bcQuantity] = "10"
	row[bcTradeCurrency] = "USD"
	row[bcPrice] = "150.00"
	row[bcFees] = "12.35"
	row[bcTradeAmount] = "1512.35"
	row[bcComments] = "broker import"
	row[bcStatus] = "SETTLED"
	return row
}

func TestTransformBC(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	portfolio := &entity.Portfolio{ID: "pf-1", Code: "GROWTH", Currency: "NZD", Base: "NZD", OwnerID: "owner-1"}

	newAdapter := func(finder *fakeAssetFinder) *RowAdapter {
		return NewRowAdapter(finder, &fixedTimeProvider{now: now}, nopLogger{})
	}

	t.Run("Full row maps onto the input shape", func(t *testing.T) {
		finder := newFakeAssetFinder()
		adapter := newAdapter(finder)

		input, err := adapter.Transform(ctx, portfolio, "BC", bcRow())

		require.NoError(t, err)
		assert.Equal(t, "owner-1", input.CallerRef.Provider)
		assert.Equal(t, "20240315", input.CallerRef.Batch)
		assert.Equal(t, "row-7", input.CallerRef.CallerID)
		assert.Equal(t, "BUY", input.TrnType)
		assert.Equal(t, "USD", input.TradeCurrency)
		assert.Equal(t, "NZD", input.CashCurrency)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), input.TradeDate)
		assert.True(t, input.Quantity.Equal(mustDecimal("10")))
		assert.True(t, input.Price.Equal(mustDecimal("150.00")))
		assert.True(t, input.Fees.Equal(mustDecimal("12.35")))
		require.NotNil(t, input.TradeAmount)
		assert.True(t, input.TradeAmount.Equal(mustDecimal("1512.35")))
		assert.Nil(t, input.CashAmount)
		assert.Equal(t, "broker import", input.Comments)
		assert.Equal(t, "SETTLED", input.Status)

		// The instrument was ingested on the fly.
		assert.Equal(t, []string{"NASDAQ/AAPL"}, finder.created)
	})

	t.Run("Quoted cells are cleaned", func(t *testing.T) {
		row := bcRow()
		row[bcCode] = `  "AAPL" `
		row[bcQuantity] = `"10"`
		adapter := newAdapter(newFakeAssetFinder())

		input, err := adapter.Transform(ctx, portfolio, "BC", row)

		require.NoError(t, err)
		assert.True(t, input.Quantity.Equal(mustDecimal("10")))
	})

	t.Run("Owner-scoped codes are unwrapped", func(t *testing.T) {
		row := bcRow()
		row[bcCode] = "owner-1.AAPL"
		finder := newFakeAssetFinder()
		adapter := newAdapter(finder)

		_, err := adapter.Transform(ctx, portfolio, "BC", row)

		require.NoError(t, err)
		assert.Equal(t, []string{"NASDAQ/AAPL"}, finder.created)
	})

	t.Run("CashAccount resolves by id first, then by scoped code", func(t *testing.T) {
		nzd := &entity.Asset{ID: "nzd-id", Code: "NZD", Market: entity.CashMarket, OwnerID: "owner-1", PriceCurrency: "NZD"}
		finder := newFakeAssetFinder(nzd)
		adapter := newAdapter(finder)

		byID := bcRow()
		byID[bcCashAccount] = "nzd-id"
		input, err := adapter.Transform(ctx, portfolio, "BC", byID)
		require.NoError(t, err)
		assert.Equal(t, "nzd-id", input.CashAssetID)

		byCode := bcRow()
		byCode[bcCashAccount] = "owner-1.NZD"
		input, err = adapter.Transform(ctx, portfolio, "BC", byCode)
		require.NoError(t, err)
		assert.Equal(t, "nzd-id", input.CashAssetID)
	})

	t.Run("CashAccount falls back to the global balance asset", func(t *testing.T) {
		// Balance assets minted during submission are not owner-scoped, so
		// a miss under the portfolio owner must still find them.
		balance := &entity.Asset{ID: "nzd-balance", Code: "NZD", Market: entity.CashMarket, PriceCurrency: "NZD"}
		finder := newFakeAssetFinder(balance)
		adapter := newAdapter(finder)

		row := bcRow()
		row[bcCashAccount] = "NZD"
		input, err := adapter.Transform(ctx, portfolio, "BC", row)

		require.NoError(t, err)
		assert.Equal(t, "nzd-balance", input.CashAssetID)
	})

	t.Run("Future trade date is rejected", func(t *testing.T) {
		row := bcRow()
		row[bcDate] = "2024-06-02" // one day after "today"
		adapter := newAdapter(newFakeAssetFinder())

		_, err := adapter.Transform(ctx, portfolio, "BC", row)

		assert.ErrorIs(t, err, errs.ErrFutureTradeDate)
	})

	t.Run("Today is not a future date", func(t *testing.T) {
		row := bcRow()
		row[bcDate] = "2024-06-01"
		adapter := newAdapter(newFakeAssetFinder())

		_, err := adapter.Transform(ctx, portfolio, "BC", row)

		assert.NoError(t, err)
	})

	t.Run("Malformed rows are rejected", func(t *testing.T) {
		adapter := newAdapter(newFakeAssetFinder())

		_, err := adapter.Transform(ctx, portfolio, "BC", []string{"too", "short"})
		assert.ErrorIs(t, err, errs.ErrInvalidRow)

		bad := bcRow()
		bad[bcQuantity] = "ten"
		_, err = adapter.Transform(ctx, portfolio, "BC", bad)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		noMarket := bcRow()
		noMarket[bcMarket] = ""
		_, err = adapter.Transform(ctx, portfolio, "BC", noMarket)
		assert.ErrorIs(t, err, errs.ErrInvalidRow)

		badDate := bcRow()
		badDate[bcDate] = "15 March 2024"
		_, err = adapter.Transform(ctx, portfolio, "BC", badDate)
		assert.ErrorIs(t, err, errs.ErrInvalidRow)
	})

	t.Run("Unknown format is rejected", func(t *testing.T) {
		adapter := newAdapter(newFakeAssetFinder())

		_, err := adapter.Transform(ctx, portfolio, "XLSX", bcRow())

		assert.ErrorIs(t, err, errs.ErrInvalidRow)
	})
}

func TestTransformSharesight(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	portfolio := &entity.Portfolio{ID: "pf-1", Code: "GROWTH", Currency: "NZD", Base: "NZD", OwnerID: "owner-1"}

	ssRow := func() []string {
		row := make([]string, ssColumns)
		row[ssMarket] = "ASX"
		row[ssCode] = "BHP"
		row[ssName] = "BHP Group"
		row[ssType] = "Buy"
		row[ssDate] = "15/03/2024"
		row[ssQuantity] = "100"
		row[ssPrice] = "45.10"
		row[ssBrokerage] = "19.95"
		row[ssCurrency] = "AUD"
		row[ssValue] = "4529.95"
		row[ssComments] = "legacy export"
		return row
	}

	adapter := NewRowAdapter(newFakeAssetFinder(), &fixedTimeProvider{now: now}, nopLogger{})

	t.Run("Legacy row maps with slash dates and broker verbs", func(t *testing.T) {
		input, err := adapter.Transform(ctx, portfolio, usecase.FormatSharesight, ssRow())

		require.NoError(t, err)
		assert.Equal(t, "BUY", input.TrnType)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), input.TradeDate)
		assert.Equal(t, "AUD", input.TradeCurrency)
		assert.True(t, input.Fees.Equal(mustDecimal("19.95")))
		require.NotNil(t, input.TradeAmount)
		assert.True(t, input.TradeAmount.Equal(mustDecimal("4529.95")))
		assert.True(t, input.CallerRef.IsEmpty(), "legacy rows carry no caller reference")
	})

	t.Run("Broker dividend verbs map to DIVI", func(t *testing.T) {
		for _, verb := range []string{"DIV", "Divi", "DIVIDEND"} {
			row := ssRow()
			row[ssType] = verb
			input, err := adapter.Transform(ctx, portfolio, usecase.FormatSharesight, row)
			require.NoError(t, err, verb)
			assert.Equal(t, "DIVI", input.TrnType)
		}
	})

	t.Run("ISO dates are accepted too", func(t *testing.T) {
		row := ssRow()
		row[ssDate] = "2024-03-15"

		input, err := adapter.Transform(ctx, portfolio, usecase.FormatSharesight, row)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), input.TradeDate)
	})
}
