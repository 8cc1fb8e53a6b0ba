package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetRepository implements integration.AssetFinder using GORM
type AssetRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	timeProvider    coreport.TimeProvider
	errorClassifier *ErrorClassifier
}

// NewAssetRepository creates a new AssetRepository instance
func NewAssetRepository(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *AssetRepository {
	return &AssetRepository{
		db:              db,
		logger:          logger,
		timeProvider:    timeProvider,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *AssetRepository) modelToEntity(m *model.Asset) *entity.Asset {
	return &entity.Asset{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		Market:        m.Market,
		Category:      m.Category,
		PriceCurrency: m.PriceCurrency,
		OwnerID:       m.OwnerID,
	}
}

// GetByID retrieves an asset by its internal identifier
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	var assetModel model.Asset
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&assetModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAssetNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&assetModel), nil
}

// FindByCode retrieves an existing asset by (market, code) for an owner
func (r *AssetRepository) FindByCode(ctx context.Context, market, code, ownerID string) (*entity.Asset, error) {
	var assetModel model.Asset
	result := r.db.WithContext(ctx).
		Where("market = ? AND code = ? AND owner_id = ?", market, code, ownerID).
		First(&assetModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAssetNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&assetModel), nil
}

// FindOrCreate resolves an asset by (market, code), creating it when unknown.
// Concurrent creation races are settled by the unique (market, code, owner)
// constraint: the loser re-fetches the winner's row.
func (r *AssetRepository) FindOrCreate(ctx context.Context, market, code, name, ownerID string) (*entity.Asset, error) {
	asset, err := r.FindByCode(ctx, market, code, ownerID)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, errs.ErrAssetNotFound) {
		return nil, err
	}

	now := r.timeProvider.Now()
	assetModel := model.Asset{
		ID:        uuid.NewString(),
		Code:      code,
		Market:    market,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if market == entity.CashMarket {
		// Cash balances are priced in their own currency.
		assetModel.Category = entity.CashCategory
		assetModel.PriceCurrency = code
	}

	result := r.db.WithContext(ctx).Create(&assetModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Debug("Asset creation lost race, fetching existing row", map[string]any{
				"market": market,
				"code":   code,
			})
			return r.FindByCode(ctx, market, code, ownerID)
		}
		r.logger.Error("Failed to create asset", map[string]any{
			"market": market,
			"code":   code,
			"error":  result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	r.logger.Info("Created asset", map[string]any{
		"asset_id": assetModel.ID,
		"market":   market,
		"code":     code,
	})
	return r.modelToEntity(&assetModel), nil
}
