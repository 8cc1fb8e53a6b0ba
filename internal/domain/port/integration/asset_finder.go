package integration

import (
	"context"

	"github.com/amirhossein-jamali/trn-engine/internal/domain/entity"
)

// AssetFinder is the asset-ingest collaborator. Lookups by (market, code)
// may create the asset when unknown; creation must be idempotent under
// concurrent attempts (unique constraint plus fetch-on-conflict, not locks).
type AssetFinder interface {
	// GetByID retrieves an asset by its internal identifier
	//
	// Possible errors:
	// - ErrAssetNotFound: If the asset doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Asset, error)

	// FindByCode retrieves an existing asset by (market, code) scoped to the
	// caller's owner id
	//
	// Possible errors:
	// - ErrAssetNotFound: If the asset doesn't exist
	FindByCode(ctx context.Context, market, code, ownerID string) (*entity.Asset, error)

	// FindOrCreate resolves an asset by (market, code), creating it with the
	// given name when unknown
	FindOrCreate(ctx context.Context, market, code, name, ownerID string) (*entity.Asset, error)
}
