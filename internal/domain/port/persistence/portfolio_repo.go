package persistence

import (
	"context"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
)

// PortfolioRepository defines the narrow lookup surface the engine needs
// from the portfolio store
type PortfolioRepository interface {
	// GetByID retrieves a portfolio by id
	//
	// Possible errors:
	// - ErrPortfolioNotFound: If the portfolio doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id string) (*entity.Portfolio, error)

	// GetByCode retrieves a portfolio by its human-readable code
	//
	// Possible errors:
	// - ErrPortfolioNotFound: If the portfolio doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByCode(ctx context.Context, code string) (*entity.Portfolio, error)
}
