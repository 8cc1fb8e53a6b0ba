package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/trn-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// PortfolioRepository implements persistence.PortfolioRepository using GORM
type PortfolioRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewPortfolioRepository creates a new PortfolioRepository instance
func NewPortfolioRepository(db *gorm.DB, logger coreport.Logger) *PortfolioRepository {
	return &PortfolioRepository{db: db, logger: logger}
}

func (r *PortfolioRepository) modelToEntity(m *model.Portfolio) *entity.Portfolio {
	return &entity.Portfolio{
		ID:       m.ID,
		Code:     m.Code,
		Name:     m.Name,
		Currency: m.Currency,
		Base:     m.Base,
		OwnerID:  m.OwnerID,
	}
}

// GetByID retrieves a portfolio by id
func (r *PortfolioRepository) GetByID(ctx context.Context, id string) (*entity.Portfolio, error) {
	var portfolioModel model.Portfolio
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&portfolioModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&portfolioModel), nil
}

// GetByCode retrieves a portfolio by its human-readable code
func (r *PortfolioRepository) GetByCode(ctx context.Context, code string) (*entity.Portfolio, error) {
	var portfolioModel model.Portfolio
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&portfolioModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return r.modelToEntity(&portfolioModel), nil
}
