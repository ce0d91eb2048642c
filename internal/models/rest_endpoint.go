package models

import (
	"time"

	"gorm.io/datatypes"
)

// RestEndpoint is a declared REST API endpoint owned by one vendor, unique
// per vendor on (path, method). QueryParameters and ResponseSchema are kept
// opaque; the resolver never parses them structurally.
type RestEndpoint struct {
	EndpointID             uint64         `gorm:"primaryKey;autoIncrement"`
	VendorID               uint64         `gorm:"not null;index;uniqueIndex:uq_endpoint_vendor_path_method"`
	Path                   string         `gorm:"type:text;not null;uniqueIndex:uq_endpoint_vendor_path_method"`
	Method                 string         `gorm:"type:varchar(10);not null;default:'GET';uniqueIndex:uq_endpoint_vendor_path_method"`
	AuthenticationRequired bool           `gorm:"not null;default:false"`
	Description            string         `gorm:"type:text"`
	QueryParameters        datatypes.JSON `gorm:"type:jsonb"`
	ResponseSchema         datatypes.JSON `gorm:"type:jsonb"`
	RateLimitTier          string         `gorm:"type:varchar(40)"`
	LastSeenAt             time.Time      `gorm:"type:timestamptz;not null"`
	CreatedAt              time.Time      `gorm:"type:timestamptz;autoCreateTime"`
}

func (RestEndpoint) TableName() string {
	return "rest_endpoints"
}
