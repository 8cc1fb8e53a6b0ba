package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate represents one historical FX observation: 1 unit of FromCcy was
// worth Rate units of ToCcy on AsOf
type FxRate struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	FromCcy string          `gorm:"not null;size:3;uniqueIndex:idx_pair_date"`
	ToCcy   string          `gorm:"not null;size:3;uniqueIndex:idx_pair_date"`
	AsOf    time.Time       `gorm:"not null;uniqueIndex:idx_pair_date"`
	Rate    decimal.Decimal `gorm:"type:numeric(20,6);not null"`

	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for FxRate
func (FxRate) TableName() string {
	return "fx_rates"
}
