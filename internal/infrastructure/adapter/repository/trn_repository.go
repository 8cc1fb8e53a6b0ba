package repository

import (
	"context"
	"encoding/json"
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

// TrnRepository implements persistence.TrnRepository using GORM
type TrnRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
	metrics         *database.MetricsCollector
}

// NewTrnRepository creates a new TrnRepository instance
func NewTrnRepository(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *TrnRepository {
	return &TrnRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
		metrics:         database.NewMetricsCollector(logger, timeProvider),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TrnRepository) entityToModel(trn *entity.Trn) model.Trn {
	var subAccounts string
	if len(trn.SubAccounts) > 0 {
		// Keys are stable sub-account codes; marshal errors cannot occur.
		raw, _ := json.Marshal(trn.SubAccounts)
		subAccounts = string(raw)
	}
	return model.Trn{
		ID:                 trn.ID,
		Provider:           trn.CallerRef.Provider,
		Batch:              trn.CallerRef.Batch,
		CallerID:           trn.CallerRef.CallerID,
		PortfolioID:        trn.PortfolioID,
		AssetID:            trn.AssetID,
		CashAssetID:        trn.CashAssetID,
		TrnType:            string(trn.TrnType),
		Status:             string(trn.Status),
		Quantity:           trn.Quantity,
		Price:              trn.Price,
		Fees:               trn.Fees,
		TradeAmount:        trn.TradeAmount,
		CashAmount:         trn.CashAmount,
		TradeCurrency:      trn.TradeCurrency,
		CashCurrency:       trn.CashCurrency,
		TradeCashRate:      trn.TradeCashRate,
		TradeBaseRate:      trn.TradeBaseRate,
		TradePortfolioRate: trn.TradePortfolioRate,
		TradeDate:          trn.TradeDate,
		SettleDate:         trn.SettleDate,
		SubAccounts:        subAccounts,
		Comments:           trn.Comments,
		Version:            trn.Version,
		CreatedAt:          trn.CreatedAt,
		UpdatedAt:          trn.UpdatedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TrnRepository) modelToEntity(m *model.Trn) *entity.Trn {
	var subAccounts map[string]decimal.Decimal
	if m.SubAccounts != "" {
		_ = json.Unmarshal([]byte(m.SubAccounts), &subAccounts)
	}
	return &entity.Trn{
		ID: m.ID,
		CallerRef: entity.CallerRef{
			Provider: m.Provider,
			Batch:    m.Batch,
			CallerID: m.CallerID,
		},
		PortfolioID:        m.PortfolioID,
		AssetID:            m.AssetID,
		CashAssetID:        m.CashAssetID,
		TrnType:            entity.TrnType(m.TrnType),
		Status:             entity.TrnStatus(m.Status),
		Quantity:           m.Quantity,
		Price:              m.Price,
		Fees:               m.Fees,
		TradeAmount:        m.TradeAmount,
		CashAmount:         m.CashAmount,
		TradeCurrency:      m.TradeCurrency,
		CashCurrency:       m.CashCurrency,
		TradeCashRate:      m.TradeCashRate,
		TradeBaseRate:      m.TradeBaseRate,
		TradePortfolioRate: m.TradePortfolioRate,
		TradeDate:          m.TradeDate,
		SettleDate:         m.SettleDate,
		SubAccounts:        subAccounts,
		Comments:           m.Comments,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// Create saves a new resolved transaction
func (r *TrnRepository) Create(ctx context.Context, trn *entity.Trn) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"trn_id":       trn.ID,
		"portfolio_id": trn.PortfolioID,
		"trn_type":     string(trn.TrnType),
	})

	trnModel := r.entityToModel(trn)
	result := r.db.WithContext(ctx).Create(&trnModel)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"trn_id":     trn.ID,
				"caller_ref": trn.CallerRef.Key(),
			})
			return errs.ErrDuplicateTrn
		}
		r.logger.Error("Failed to create transaction", map[string]any{
			"trn_id": trn.ID,
			"error":  result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}

// Update persists lifecycle or migration changes to an existing transaction
func (r *TrnRepository) Update(ctx context.Context, trn *entity.Trn) error {
	trnModel := r.entityToModel(trn)

	result := r.db.WithContext(ctx).Model(&model.Trn{}).
		Where("id = ?", trn.ID).
		Updates(map[string]interface{}{
			"status":               trnModel.Status,
			"settle_date":          trnModel.SettleDate,
			"trade_cash_rate":      trnModel.TradeCashRate,
			"trade_base_rate":      trnModel.TradeBaseRate,
			"trade_portfolio_rate": trnModel.TradePortfolioRate,
			"version":              trnModel.Version,
			"updated_at":           trnModel.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"trn_id": trn.ID,
			"error":  result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrTrnNotFound
	}
	return nil
}

// GetByID retrieves a transaction by its id
func (r *TrnRepository) GetByID(ctx context.Context, id string) (*entity.Trn, error) {
	var trnModel model.Trn
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&trnModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTrnNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&trnModel), nil
}

// ExistsByCallerRef checks whether a caller reference was already recorded
func (r *TrnRepository) ExistsByCallerRef(ctx context.Context, ref entity.CallerRef) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Trn{}).
		Where("provider = ? AND batch = ? AND caller_id = ?", ref.Provider, ref.Batch, ref.CallerID).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return count > 0, nil
}

// FindByPortfolio returns a portfolio's transactions, trade date ascending
func (r *TrnRepository) FindByPortfolio(ctx context.Context, portfolioID string) ([]*entity.Trn, error) {
	var trnModels []model.Trn
	result := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("trade_date asc").
		Find(&trnModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.toEntities(trnModels), nil
}

// FindDueEvents returns PROPOSED DIVI/SPLIT transactions due on or before asOf
func (r *TrnRepository) FindDueEvents(ctx context.Context, asOf time.Time) ([]*entity.Trn, error) {
	types := entity.EventTypes()
	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}

	var trnModels []model.Trn
	result := r.db.WithContext(ctx).
		Where("status = ? AND trn_type IN ? AND trade_date <= ?",
			string(entity.StatusProposed), typeStrings, asOf).
		Find(&trnModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.toEntities(trnModels), nil
}

// FindCashLedger returns the transactions that moved the given cash asset,
// trade date descending. FX_BUY rows are included on their purchased side
// as well: the asset is the currency bought even though the cash asset
// column points at the currency sold.
func (r *TrnRepository) FindCashLedger(ctx context.Context, portfolioID, cashAssetID string, asOf time.Time) ([]*entity.Trn, error) {
	var trnModels []model.Trn
	_, err := r.metrics.MeasureQuery(ctx, "trn.find_cash_ledger", func() (int64, error) {
		result := r.db.WithContext(ctx).
			Where("portfolio_id = ? AND trade_date <= ?", portfolioID, asOf).
			Where("cash_asset_id = ? OR (trn_type = ? AND asset_id = ?)",
				cashAssetID, string(entity.TrnFxBuy), cashAssetID).
			Order("trade_date desc").
			Find(&trnModels)
		return result.RowsAffected, result.Error
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
	return r.toEntities(trnModels), nil
}

// FindEventsInWindow returns same portfolio/asset/type transactions with a
// trade date inside [from, to]
func (r *TrnRepository) FindEventsInWindow(
	ctx context.Context,
	portfolioID, assetID string,
	trnType entity.TrnType,
	from, to time.Time,
) ([]*entity.Trn, error) {
	var trnModels []model.Trn
	result := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND asset_id = ? AND trn_type = ? AND trade_date BETWEEN ? AND ?",
			portfolioID, assetID, string(trnType), from, to).
		Find(&trnModels)

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.toEntities(trnModels), nil
}

func (r *TrnRepository) toEntities(trnModels []model.Trn) []*entity.Trn {
	trns := make([]*entity.Trn, len(trnModels))
	for i := range trnModels {
		trns[i] = r.modelToEntity(&trnModels[i])
	}
	return trns
}
