package repository

import (
	"context"

	"gorm.io/gorm"

	"exchangecatalog/internal/models"
)

// CatalogRepository is the storage boundary for the catalog engine. Upserts
// are idempotent on the natural key of each entity; Get* methods return
// (nil, nil) when the row does not exist so callers can map absence to their
// own error taxonomy.
type CatalogRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Vendors.
	UpsertVendor(ctx context.Context, item *models.Vendor) error
	GetVendorByName(ctx context.Context, name string) (*models.Vendor, error)
	GetVendorByID(ctx context.Context, id uint64) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	CountVendors(ctx context.Context) (int64, error)

	// Canonical schema (static reference data).
	GetDataTypeByName(ctx context.Context, name string) (*models.CanonicalDataType, error)
	GetCanonicalFieldByName(ctx context.Context, name string) (*models.CanonicalField, error)
	ListRequiredFields(ctx context.Context, dataTypeName string) ([]models.CanonicalField, error)

	// Vendor-scoped sources and products.
	UpsertEndpointTx(ctx context.Context, tx *gorm.DB, item *models.RestEndpoint) error
	UpsertChannelTx(ctx context.Context, tx *gorm.DB, item *models.WebSocketChannel) error
	UpsertProductTx(ctx context.Context, tx *gorm.DB, item *models.Product) error
	GetEndpointByPath(ctx context.Context, vendorID uint64, path, method string) (*models.RestEndpoint, error)
	GetEndpointByID(ctx context.Context, id uint64) (*models.RestEndpoint, error)
	GetChannelByName(ctx context.Context, vendorID uint64, name string) (*models.WebSocketChannel, error)
	GetChannelByID(ctx context.Context, id uint64) (*models.WebSocketChannel, error)
	GetProductByID(ctx context.Context, id uint64) (*models.Product, error)
	GetProductBySymbol(ctx context.Context, vendorID uint64, symbol string) (*models.Product, error)
	ListEndpointsByVendor(ctx context.Context, vendorID uint64) ([]models.RestEndpoint, error)
	ListChannelsByVendor(ctx context.Context, vendorID uint64) ([]models.WebSocketChannel, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, error)
	CountProducts(ctx context.Context, params ListProductsParams) (int64, error)

	// Field mappings. CreateFieldMapping relies on the storage unique index:
	// a conflicting insert is absorbed and reported as (created=false, nil).
	FindFieldMapping(ctx context.Context, key FieldMappingKey) (*models.FieldMapping, error)
	CreateFieldMapping(ctx context.Context, item *models.FieldMapping) (created bool, err error)
	SetFieldMappingActive(ctx context.Context, mappingID uint64, active bool) error
	ListActiveMappings(ctx context.Context, vendorID uint64, entityType, sourceType string) ([]models.FieldMapping, error)
	ListActiveMappingsByEntity(ctx context.Context, vendorID uint64, entityType string) ([]models.FieldMapping, error)
	ListFieldMappings(ctx context.Context, params ListMappingsParams) ([]models.FieldMapping, error)
	CountFieldMappings(ctx context.Context, params ListMappingsParams) (int64, error)

	// Product ↔ source links.
	UpsertProductEndpointLink(ctx context.Context, item *models.ProductEndpointLink) error
	UpsertProductChannelLink(ctx context.Context, item *models.ProductChannelLink) error
	ListEndpointLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductEndpointLink, error)
	ListChannelLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductChannelLink, error)

	// Discovery bookkeeping and runtime switches.
	GetSyncState(ctx context.Context, scope string) (*models.SyncState, error)
	SaveSyncStateTx(ctx context.Context, tx *gorm.DB, state *models.SyncState) error
	ListSyncStates(ctx context.Context) ([]models.SyncState, error)
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
}

// FieldMappingKey is the natural identity of a mapping. Exactly one of
// EndpointID/ChannelID is non-nil.
type FieldMappingKey struct {
	VendorID         uint64
	CanonicalFieldID uint64
	SourceType       string
	EntityType       string
	VendorFieldPath  string
	EndpointID       *uint64
	ChannelID        *uint64
}

type ListProductsParams struct {
	Limit    int
	Offset   int
	VendorID *uint64
	Status   *string
	Symbol   *string
	OrderBy  string
	Asc      *bool
}

type ListMappingsParams struct {
	Limit      int
	Offset     int
	VendorID   *uint64
	EntityType *string
	SourceType *string
	ActiveOnly bool
	OrderBy    string
	Asc        *bool
}
