package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebSocketChannel is a declared WebSocket channel owned by one vendor,
// unique per vendor on channel_name. Subscribe/unsubscribe templates and the
// illustrative message schema are stored verbatim from the adapter.
type WebSocketChannel struct {
	ChannelID              uint64         `gorm:"primaryKey;autoIncrement"`
	VendorID               uint64         `gorm:"not null;index;uniqueIndex:uq_channel_vendor_name"`
	ChannelName            string         `gorm:"type:varchar(120);not null;uniqueIndex:uq_channel_vendor_name"`
	AuthenticationRequired bool           `gorm:"not null;default:false"`
	Description            string         `gorm:"type:text"`
	SubscribeFormat        datatypes.JSON `gorm:"type:jsonb"`
	UnsubscribeFormat      datatypes.JSON `gorm:"type:jsonb"`
	MessageTypes           datatypes.JSON `gorm:"type:jsonb"`
	MessageSchema          datatypes.JSON `gorm:"type:jsonb"`
	VendorMetadata         datatypes.JSON `gorm:"type:jsonb"`
	LastSeenAt             time.Time      `gorm:"type:timestamptz;not null"`
	CreatedAt              time.Time      `gorm:"type:timestamptz;autoCreateTime"`
}

func (WebSocketChannel) TableName() string {
	return "websocket_channels"
}
