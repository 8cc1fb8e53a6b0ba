package migration

import (
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific advanced indexes
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateAdvancedIndexes creates advanced PostgreSQL indexes for better performance
func (m *AdvancedIndexManager) CreateAdvancedIndexes() error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	// Partial index for the settlement sweep: only PROPOSED corporate
	// events are ever scanned
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trns_due_events
		ON trns (trade_date)
		WHERE status = 'PROPOSED' AND trn_type IN ('DIVI', 'SPLIT')
	`).Error; err != nil {
		m.logger.Error("Failed to create due events partial index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Composite index covering both sides of the cash ladder query
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trns_cash_ladder
		ON trns (portfolio_id, cash_asset_id, trade_date)
	`).Error; err != nil {
		m.logger.Error("Failed to create cash ladder composite index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Dedup window lookups scan by portfolio, asset and type
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trns_event_window
		ON trns (portfolio_id, asset_id, trn_type, trade_date)
	`).Error; err != nil {
		m.logger.Error("Failed to create event window composite index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// BRIN index for created_at (more efficient for temporal data)
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trns_created_at_brin
		ON trns USING BRIN (created_at)
		WITH (pages_per_range = 32)
	`).Error; err != nil {
		m.logger.Error("Failed to create BRIN index on created_at", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Rate lookups always want the latest observation on or before a date
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_fx_rates_pair_as_of_desc
		ON fx_rates (from_ccy, to_ccy, as_of DESC)
	`).Error; err != nil {
		m.logger.Error("Failed to create fx rates lookup index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}
