package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trn represents the database model for resolved transactions
type Trn struct {
	ID          string `gorm:"primaryKey;size:36"`
	Provider    string `gorm:"size:100;index:idx_caller_ref"`
	Batch       string `gorm:"size:100;index:idx_caller_ref"`
	CallerID    string `gorm:"size:100;index:idx_caller_ref"`
	PortfolioID string `gorm:"not null;index;size:36"`
	AssetID     string `gorm:"not null;index;size:36"`
	CashAssetID string `gorm:"index;size:36"`

	TrnType string `gorm:"not null;size:20;index"`
	Status  string `gorm:"not null;size:20;index"`

	Quantity decimal.Decimal `gorm:"type:numeric(20,6)"`
	Price    decimal.Decimal `gorm:"type:numeric(20,6)"`
	Fees     decimal.Decimal `gorm:"type:numeric(20,6)"`

	TradeAmount decimal.Decimal `gorm:"type:numeric(20,2)"`
	CashAmount  decimal.Decimal `gorm:"type:numeric(20,2)"`

	TradeCurrency string `gorm:"not null;size:3"`
	CashCurrency  string `gorm:"size:3"`

	TradeCashRate      decimal.Decimal `gorm:"type:numeric(20,6)"`
	TradeBaseRate      decimal.Decimal `gorm:"type:numeric(20,6)"`
	TradePortfolioRate decimal.Decimal `gorm:"type:numeric(20,6)"`

	TradeDate  time.Time `gorm:"not null;index"`
	SettleDate *time.Time

	SubAccounts string `gorm:"type:text"`
	Comments    string `gorm:"type:text"`
	Version     string `gorm:"not null;size:10"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Trn
func (Trn) TableName() string {
	return "trns"
}
