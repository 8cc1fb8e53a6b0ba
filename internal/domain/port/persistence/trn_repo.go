package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
)

// TrnRepository defines essential methods to interact with transaction data
type TrnRepository interface {
	// Create saves a new resolved transaction
	//
	// Possible errors:
	// - ErrDuplicateTrn: If a transaction with the same caller reference already exists
	// - ErrConstraintViolation: If referenced rows do not exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, trn *entity.Trn) error

	// Update persists lifecycle or migration changes to an existing transaction
	//
	// Possible errors:
	// - ErrTrnNotFound: If the transaction doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, trn *entity.Trn) error

	// GetByID retrieves a transaction by its id
	//
	// Possible errors:
	// - ErrTrnNotFound: If the transaction doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id string) (*entity.Trn, error)

	// ExistsByCallerRef checks whether a transaction with the given caller
	// reference was already recorded. Used for import idempotency.
	ExistsByCallerRef(ctx context.Context, ref entity.CallerRef) (bool, error)

	// FindByPortfolio returns all transactions of a portfolio ordered by
	// trade date ascending. Used by the exporter.
	FindByPortfolio(ctx context.Context, portfolioID string) ([]*entity.Trn, error)

	// FindDueEvents returns PROPOSED event transactions (DIVI/SPLIT) whose
	// trade date is on or before asOf. Trade types are never selected.
	FindDueEvents(ctx context.Context, asOf time.Time) ([]*entity.Trn, error)

	// FindCashLedger returns the transactions that moved the given cash
	// asset's balance up to asOf, ordered by trade date descending. Includes
	// FX_BUY rows whose purchased-currency side is the given asset.
	FindCashLedger(ctx context.Context, portfolioID, cashAssetID string, asOf time.Time) ([]*entity.Trn, error)

	// FindEventsInWindow returns transactions of the given portfolio, asset
	// and type whose trade date falls inside [from, to]. Used by the
	// date-proximity dedup check for replayed corporate events.
	FindEventsInWindow(ctx context.Context, portfolioID, assetID string, trnType entity.TrnType, from, to time.Time) ([]*entity.Trn, error)
}
