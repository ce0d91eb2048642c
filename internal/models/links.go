package models

import (
	"time"
)

// ProductEndpointLink records that a REST endpoint serves a product's data in
// a given role (e.g. ticker, orderbook). Inserted idempotently by the linking
// pass; cross-vendor references are rejected before they reach storage.
type ProductEndpointLink struct {
	LinkID     uint64    `gorm:"primaryKey;autoIncrement"`
	ProductID  uint64    `gorm:"not null;index;uniqueIndex:uq_product_endpoint_role"`
	EndpointID uint64    `gorm:"not null;index;uniqueIndex:uq_product_endpoint_role"`
	Role       string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_product_endpoint_role"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ProductEndpointLink) TableName() string {
	return "product_endpoint_links"
}

// ProductChannelLink is the WebSocket counterpart of ProductEndpointLink.
type ProductChannelLink struct {
	LinkID    uint64    `gorm:"primaryKey;autoIncrement"`
	ProductID uint64    `gorm:"not null;index;uniqueIndex:uq_product_channel_role"`
	ChannelID uint64    `gorm:"not null;index;uniqueIndex:uq_product_channel_role"`
	Role      string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_product_channel_role"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ProductChannelLink) TableName() string {
	return "product_channel_links"
}
