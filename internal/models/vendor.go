package models

import (
	"time"
)

// Vendor is a cryptocurrency exchange being cataloged. Identity is fixed at
// creation; discovery runs only touch the owned endpoint/channel/product rows.
type Vendor struct {
	VendorID     uint64    `gorm:"primaryKey;autoIncrement"`
	VendorName   string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	DisplayName  string    `gorm:"type:text;not null"`
	BaseURL      string    `gorm:"type:text;not null"`
	WebsocketURL string    `gorm:"type:text"`
	Enabled      bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Vendor) TableName() string {
	return "vendors"
}
