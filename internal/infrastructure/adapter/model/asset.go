package model

import "time"

// Asset represents the database model for instruments, including the
// synthesized "<CCY> Balance" cash assets on the CASH market
type Asset struct {
	ID            string `gorm:"primaryKey;size:36"`
	Code          string `gorm:"not null;size:50;uniqueIndex:idx_market_code"`
	Market        string `gorm:"not null;size:20;uniqueIndex:idx_market_code"`
	OwnerID       string `gorm:"size:36;uniqueIndex:idx_market_code"`
	Name          string `gorm:"size:255"`
	Category      string `gorm:"size:50"`
	PriceCurrency string `gorm:"size:3"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Asset
func (Asset) TableName() string {
	return "assets"
}

// Portfolio represents the database model for portfolios
type Portfolio struct {
	ID       string `gorm:"primaryKey;size:36"`
	Code     string `gorm:"not null;uniqueIndex;size:50"`
	Name     string `gorm:"size:255"`
	Currency string `gorm:"not null;size:3"`
	Base     string `gorm:"not null;size:3"`
	OwnerID  string `gorm:"size:36;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Portfolio
func (Portfolio) TableName() string {
	return "portfolios"
}
