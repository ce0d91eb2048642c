package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ProductStatusOnline  = "online"
	ProductStatusOffline = "offline"
)

// Product is a tradable pair owned by one vendor, unique per vendor on
// symbol. Re-discovery refreshes Status and limits in place; ProductID is
// stable across runs. VendorMetadata preserves the raw source record.
type Product struct {
	ProductID      uint64           `gorm:"primaryKey;autoIncrement"`
	VendorID       uint64           `gorm:"not null;index;uniqueIndex:uq_product_vendor_symbol"`
	Symbol         string           `gorm:"type:varchar(60);not null;uniqueIndex:uq_product_vendor_symbol"`
	BaseCurrency   string           `gorm:"type:varchar(20);not null"`
	QuoteCurrency  string           `gorm:"type:varchar(20);not null"`
	Status         string           `gorm:"type:varchar(20);not null;default:'online';index"`
	MinOrderSize   *decimal.Decimal `gorm:"type:numeric(30,12)"`
	MaxOrderSize   *decimal.Decimal `gorm:"type:numeric(30,12)"`
	PriceIncrement *decimal.Decimal `gorm:"type:numeric(30,12)"`
	VendorMetadata datatypes.JSON   `gorm:"type:jsonb"`
	LastSeenAt     time.Time        `gorm:"type:timestamptz;not null"`
	CreatedAt      time.Time        `gorm:"type:timestamptz;autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}
