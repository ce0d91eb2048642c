package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SourceTypeRest      = "rest"
	SourceTypeWebsocket = "websocket"
)

// FieldMapping binds a vendor-specific field path to a canonical field for
// one vendor, source, and entity type. Exactly one of EndpointID/ChannelID is
// set, matching SourceType, and the referenced row must belong to the same
// vendor. Identity for idempotence is (vendor, canonical field, source type,
// entity type, path, source ref); the authoritative guard is the unique index
// created in db.Migrate, not an application-level lock.
type FieldMapping struct {
	MappingID          uint64         `gorm:"primaryKey;autoIncrement"`
	VendorID           uint64         `gorm:"not null;index"`
	CanonicalFieldID   uint64         `gorm:"not null;index"`
	SourceType         string         `gorm:"type:varchar(12);not null"`
	EntityType         string         `gorm:"type:varchar(40);not null;index"`
	VendorFieldPath    string         `gorm:"type:text;not null"`
	EndpointID         *uint64        `gorm:"index"`
	ChannelID          *uint64        `gorm:"index"`
	TransformationRule datatypes.JSON `gorm:"type:jsonb"`
	Priority           int            `gorm:"not null;default:0"`
	IsActive           bool           `gorm:"not null;default:true"`
	CreatedAt          time.Time      `gorm:"type:timestamptz;autoCreateTime"`
}

func (FieldMapping) TableName() string {
	return "field_mappings"
}
