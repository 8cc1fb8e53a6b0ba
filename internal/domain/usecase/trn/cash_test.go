package trn

import (
	"context"
	"testing"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	"github.com/amirhossein-jamali/trn-engine/internal/domain/port/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCashAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("Explicit cashAssetId wins", func(t *testing.T) {
		nzd := &entity.Asset{ID: "nzd-balance", Code: "NZD", Market: entity.CashMarket, PriceCurrency: "NZD"}
		resolver := NewCashResolver(newFakeAssetFinder(nzd))

		asset, err := resolver.ResolveCashAsset(ctx,
			usecase.TrnInput{CashAssetID: "nzd-balance"}, "USD", entity.TrnBuy)

		require.NoError(t, err)
		assert.Equal(t, "nzd-balance", asset.ID)
	})

	t.Run("Unresolvable explicit cashAssetId is an error", func(t *testing.T) {
		resolver := NewCashResolver(newFakeAssetFinder())

		_, err := resolver.ResolveCashAsset(ctx,
			usecase.TrnInput{CashAssetID: "missing"}, "USD", entity.TrnBuy)

		assert.ErrorIs(t, err, errs.ErrAssetNotFound)
	})

	t.Run("Cash currency creates the balance asset", func(t *testing.T) {
		finder := newFakeAssetFinder()
		resolver := NewCashResolver(finder)

		asset, err := resolver.ResolveCashAsset(ctx,
			usecase.TrnInput{CashCurrency: "nzd"}, "USD", entity.TrnBuy)

		require.NoError(t, err)
		assert.Equal(t, "NZD", asset.Code)
		assert.Equal(t, entity.CashMarket, asset.Market)
		assert.Equal(t, "NZD Balance", asset.Name)
		assert.Equal(t, []string{"CASH/NZD"}, finder.created)
	})

	t.Run("Trade currency is the fallback", func(t *testing.T) {
		finder := newFakeAssetFinder()
		resolver := NewCashResolver(finder)

		asset, err := resolver.ResolveCashAsset(ctx, usecase.TrnInput{}, "USD", entity.TrnSell)

		require.NoError(t, err)
		assert.Equal(t, "USD", asset.Code)
	})

	t.Run("Resolution is idempotent per currency", func(t *testing.T) {
		finder := newFakeAssetFinder()
		resolver := NewCashResolver(finder)

		first, err := resolver.ResolveCashAsset(ctx, usecase.TrnInput{CashCurrency: "NZD"}, "NZD", entity.TrnBuy)
		require.NoError(t, err)
		second, err := resolver.ResolveCashAsset(ctx, usecase.TrnInput{CashCurrency: "NZD"}, "NZD", entity.TrnSell)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, finder.created, 1)
	})

	t.Run("Zero-impact type without cash hints resolves to nil", func(t *testing.T) {
		resolver := NewCashResolver(newFakeAssetFinder())

		asset, err := resolver.ResolveCashAsset(ctx, usecase.TrnInput{}, "USD", entity.TrnSplit)

		require.NoError(t, err)
		assert.Nil(t, asset)
	})
}

func TestComputeCashImpact(t *testing.T) {
	tradeAmount := mustDecimal("1500.00")
	rate := mustDecimal("0.5")

	t.Run("Caller-supplied cashAmount is trusted verbatim", func(t *testing.T) {
		impact := ComputeCashImpact(entity.TrnBuy, tradeAmount, rate, decimalPtr("-123.45"))
		assert.True(t, impact.Equal(mustDecimal("-123.45")))
	})

	t.Run("Sign follows the transaction type", func(t *testing.T) {
		testCases := []struct {
			trnType  entity.TrnType
			expected string
		}{
			{entity.TrnBuy, "-750.00"},
			{entity.TrnWithdrawal, "-750.00"},
			{entity.TrnFxBuy, "-750.00"},
			{entity.TrnSell, "750.00"},
			{entity.TrnDivi, "750.00"},
			{entity.TrnDeposit, "750.00"},
			{entity.TrnSplit, "0"},
			{entity.TrnBalance, "0"},
			{entity.TrnAdd, "0"},
		}

		for _, tc := range testCases {
			t.Run(string(tc.trnType), func(t *testing.T) {
				impact := ComputeCashImpact(tc.trnType, tradeAmount, rate, nil)
				assert.True(t, impact.Equal(mustDecimal(tc.expected)),
					"got %s, want %s", impact, tc.expected)
			})
		}
	})
}
