package database

import (
	"fmt"
	"os"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/time"
	"gorm.io/gorm"
)

// TestDBManager provides utilities for integration tests against a live
// Postgres. Tests using it must call NewTestDBManager, which skips unless
// TEST_DB_HOST is set.
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates a manager against the database named by the
// TEST_DB_* environment, skipping the test when TEST_DB_HOST is unset.
// A nil logger means silent tests.
func NewTestDBManager(t *testing.T, testLogger coreport.Logger) *TestDBManager {
	t.Helper()

	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration test")
	}

	if testLogger == nil {
		testLogger = logger.NewNoopLogger()
	}

	timeProvider := timeprovider.NewRealTimeProvider()

	config := &Config{
		Driver:          "postgres",
		Host:            os.Getenv("TEST_DB_HOST"),
		Port:            getEnvIntOrDefault("TEST_DB_PORT", 5432),
		Username:        getEnvOrDefault("TEST_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		Database:        getEnvOrDefault("TEST_DB_DATABASE", "trn_engine_test"),
		SSLMode:         getEnvOrDefault("TEST_DB_SSL_MODE", "disable"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   1, // fail fast in tests
		RetryDelay:      1,
	}

	manager := NewManager(config, testLogger, timeProvider)

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       testLogger,
		TimeProvider: timeProvider,
	}
}

// Connect connects to the test database
func (m *TestDBManager) Connect(t *testing.T) {
	t.Helper()

	if _, err := m.Manager.Connect(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// SetupTestDB recreates the schema from a clean slate.
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	db := m.Manager.DB()

	if err := dropAllTables(db); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Portfolio{},
		&model.Asset{},
		&model.Trn{},
		&model.FxRate{},
	); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	if err := createTestIndexes(db); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}
}

func dropAllTables(db *gorm.DB) error {
	return db.Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
}

// createTestIndexes mirrors the indexes the migration path creates, the
// partial caller-ref uniqueness most of all.
func createTestIndexes(db *gorm.DB) error {
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_trns_caller_ref_unique ON trns (provider, batch, caller_id) WHERE caller_id <> ''").Error; err != nil {
		return err
	}

	return db.Exec("CREATE INDEX IF NOT EXISTS idx_trns_portfolio_trade_date ON trns (portfolio_id, trade_date)").Error
}

// TruncateAllTables truncates all tables in the test database
func (m *TestDBManager) TruncateAllTables(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error; err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// CreateTestPortfolio creates a test portfolio with the given reporting currencies
func (m *TestDBManager) CreateTestPortfolio(t *testing.T, id, code, currency, base string) {
	t.Helper()

	portfolio := model.Portfolio{
		ID:        id,
		Code:      code,
		Currency:  currency,
		Base:      base,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := m.Manager.DB().Create(&portfolio).Error; err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
