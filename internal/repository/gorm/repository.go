package gormrepository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exchangecatalog/internal/models"
	"exchangecatalog/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Vendors ----------------------------------------------------------------

func (s *Store) UpsertVendor(ctx context.Context, item *models.Vendor) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.VendorName) == "" {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name",
			"base_url",
			"websocket_url",
			"enabled",
			"updated_at",
		}),
	}).Create(item).Error
	if err != nil {
		return err
	}
	if item.VendorID == 0 {
		existing, err := s.GetVendorByName(ctx, item.VendorName)
		if err != nil {
			return err
		}
		if existing != nil {
			item.VendorID = existing.VendorID
		}
	}
	return nil
}

func (s *Store) GetVendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var item models.Vendor
	err := s.db.WithContext(ctx).
		Where("vendor_name = ?", name).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetVendorByID(ctx context.Context, id uint64) (*models.Vendor, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Vendor
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Vendor
	if err := s.db.WithContext(ctx).Order("vendor_name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountVendors(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vendor{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --- Canonical schema -------------------------------------------------------

func (s *Store) GetDataTypeByName(ctx context.Context, name string) (*models.CanonicalDataType, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CanonicalDataType
	err := s.db.WithContext(ctx).
		Where("data_type_name = ?", name).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetCanonicalFieldByName(ctx context.Context, name string) (*models.CanonicalField, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CanonicalField
	err := s.db.WithContext(ctx).
		Where("field_name = ?", name).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRequiredFields(ctx context.Context, dataTypeName string) ([]models.CanonicalField, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.CanonicalField
	err := s.db.WithContext(ctx).
		Model(&models.CanonicalField{}).
		Joins("JOIN data_type_fields dtf ON dtf.canonical_field_id = canonical_fields.canonical_field_id").
		Joins("JOIN canonical_data_types dt ON dt.data_type_id = dtf.data_type_id").
		Where("dt.data_type_name = ?", dataTypeName).
		Order("canonical_fields.field_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Endpoints, channels, products ------------------------------------------

func (s *Store) UpsertEndpointTx(ctx context.Context, tx *gorm.DB, item *models.RestEndpoint) error {
	if item == nil {
		return nil
	}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "path"}, {Name: "method"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"authentication_required",
			"description",
			"query_parameters",
			"response_schema",
			"rate_limit_tier",
			"last_seen_at",
		}),
	}).Create(item).Error; err != nil {
		return err
	}
	if item.EndpointID == 0 {
		var existing models.RestEndpoint
		if err := tx.WithContext(ctx).
			Where("vendor_id = ? AND path = ? AND method = ?", item.VendorID, item.Path, item.Method).
			First(&existing).Error; err != nil {
			return err
		}
		item.EndpointID = existing.EndpointID
	}
	return nil
}

func (s *Store) UpsertChannelTx(ctx context.Context, tx *gorm.DB, item *models.WebSocketChannel) error {
	if item == nil {
		return nil
	}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "channel_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"authentication_required",
			"description",
			"subscribe_format",
			"unsubscribe_format",
			"message_types",
			"message_schema",
			"vendor_metadata",
			"last_seen_at",
		}),
	}).Create(item).Error; err != nil {
		return err
	}
	if item.ChannelID == 0 {
		var existing models.WebSocketChannel
		if err := tx.WithContext(ctx).
			Where("vendor_id = ? AND channel_name = ?", item.VendorID, item.ChannelName).
			First(&existing).Error; err != nil {
			return err
		}
		item.ChannelID = existing.ChannelID
	}
	return nil
}

func (s *Store) UpsertProductTx(ctx context.Context, tx *gorm.DB, item *models.Product) error {
	if item == nil {
		return nil
	}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"base_currency",
			"quote_currency",
			"status",
			"min_order_size",
			"max_order_size",
			"price_increment",
			"vendor_metadata",
			"last_seen_at",
		}),
	}).Create(item).Error; err != nil {
		return err
	}
	if item.ProductID == 0 {
		var existing models.Product
		if err := tx.WithContext(ctx).
			Where("vendor_id = ? AND symbol = ?", item.VendorID, item.Symbol).
			First(&existing).Error; err != nil {
			return err
		}
		item.ProductID = existing.ProductID
	}
	return nil
}

func (s *Store) GetEndpointByPath(ctx context.Context, vendorID uint64, path, method string) (*models.RestEndpoint, error) {
	if s == nil || s.db == nil || vendorID == 0 {
		return nil, nil
	}
	if method == "" {
		method = "GET"
	}
	var item models.RestEndpoint
	err := s.db.WithContext(ctx).
		Where("vendor_id = ? AND path = ? AND method = ?", vendorID, path, method).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetEndpointByID(ctx context.Context, id uint64) (*models.RestEndpoint, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.RestEndpoint
	err := s.db.WithContext(ctx).
		Where("endpoint_id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetChannelByName(ctx context.Context, vendorID uint64, name string) (*models.WebSocketChannel, error) {
	if s == nil || s.db == nil || vendorID == 0 {
		return nil, nil
	}
	var item models.WebSocketChannel
	err := s.db.WithContext(ctx).
		Where("vendor_id = ? AND channel_name = ?", vendorID, name).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetChannelByID(ctx context.Context, id uint64) (*models.WebSocketChannel, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.WebSocketChannel
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetProductByID(ctx context.Context, id uint64) (*models.Product, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Product
	err := s.db.WithContext(ctx).
		Where("product_id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetProductBySymbol(ctx context.Context, vendorID uint64, symbol string) (*models.Product, error) {
	if s == nil || s.db == nil || vendorID == 0 {
		return nil, nil
	}
	var item models.Product
	err := s.db.WithContext(ctx).
		Where("vendor_id = ? AND symbol = ?", vendorID, symbol).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListEndpointsByVendor(ctx context.Context, vendorID uint64) ([]models.RestEndpoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.RestEndpoint
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("path asc, method asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListChannelsByVendor(ctx context.Context, vendorID uint64) ([]models.WebSocketChannel, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.WebSocketChannel
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("channel_name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]models.Product, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyProductFilters(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "symbol")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Product
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountProducts(ctx context.Context, params repository.ListProductsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.applyProductFilters(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) applyProductFilters(ctx context.Context, params repository.ListProductsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if params.VendorID != nil && *params.VendorID != 0 {
		query = query.Where("vendor_id = ?", *params.VendorID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	return query
}

// --- Field mappings ---------------------------------------------------------

func (s *Store) FindFieldMapping(ctx context.Context, key repository.FieldMappingKey) (*models.FieldMapping, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Where("vendor_id = ?", key.VendorID).
		Where("canonical_field_id = ?", key.CanonicalFieldID).
		Where("source_type = ?", key.SourceType).
		Where("entity_type = ?", key.EntityType).
		Where("vendor_field_path = ?", key.VendorFieldPath)
	if key.EndpointID != nil {
		query = query.Where("endpoint_id = ?", *key.EndpointID)
	} else {
		query = query.Where("endpoint_id IS NULL")
	}
	if key.ChannelID != nil {
		query = query.Where("channel_id = ?", *key.ChannelID)
	} else {
		query = query.Where("channel_id IS NULL")
	}
	var item models.FieldMapping
	err := query.First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateFieldMapping inserts under ON CONFLICT DO NOTHING so a concurrent
// identical registration is absorbed by the unique index rather than raised.
func (s *Store) CreateFieldMapping(ctx context.Context, item *models.FieldMapping) (bool, error) {
	if s == nil || s.db == nil || item == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) SetFieldMappingActive(ctx context.Context, mappingID uint64, active bool) error {
	if s == nil || s.db == nil || mappingID == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.FieldMapping{}).
		Where("mapping_id = ?", mappingID).
		Update("is_active", active).Error
}

func (s *Store) ListActiveMappings(ctx context.Context, vendorID uint64, entityType, sourceType string) ([]models.FieldMapping, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.FieldMapping
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Where("entity_type = ?", entityType).
		Where("source_type = ?", sourceType).
		Where("is_active = ?", true).
		Order("priority desc, created_at desc, mapping_id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListActiveMappingsByEntity(ctx context.Context, vendorID uint64, entityType string) ([]models.FieldMapping, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.FieldMapping
	err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Where("entity_type = ?", entityType).
		Where("is_active = ?", true).
		Order("priority desc, created_at desc, mapping_id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListFieldMappings(ctx context.Context, params repository.ListMappingsParams) ([]models.FieldMapping, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyMappingFilters(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "mapping_id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.FieldMapping
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountFieldMappings(ctx context.Context, params repository.ListMappingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	if err := s.applyMappingFilters(ctx, params).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) applyMappingFilters(ctx context.Context, params repository.ListMappingsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.FieldMapping{})
	if params.VendorID != nil && *params.VendorID != 0 {
		query = query.Where("vendor_id = ?", *params.VendorID)
	}
	if params.EntityType != nil && strings.TrimSpace(*params.EntityType) != "" {
		query = query.Where("entity_type = ?", strings.TrimSpace(*params.EntityType))
	}
	if params.SourceType != nil && strings.TrimSpace(*params.SourceType) != "" {
		query = query.Where("source_type = ?", strings.TrimSpace(*params.SourceType))
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// --- Product links ----------------------------------------------------------

func (s *Store) UpsertProductEndpointLink(ctx context.Context, item *models.ProductEndpointLink) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "endpoint_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) UpsertProductChannelLink(ctx context.Context, item *models.ProductChannelLink) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "channel_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) ListEndpointLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductEndpointLink, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ProductEndpointLink
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("link_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListChannelLinksByProduct(ctx context.Context, productID uint64) ([]models.ProductChannelLink, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ProductChannelLink
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("link_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Sync state and settings ------------------------------------------------

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var state models.SyncState
	err := s.db.WithContext(ctx).First(&state, "scope = ?", scope).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncStateTx(ctx context.Context, tx *gorm.DB, state *models.SyncState) error {
	if state == nil {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cursor",
			"last_success_at",
			"last_attempt_at",
			"last_error",
			"stats_json",
		}),
	}).Create(state).Error
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var states []models.SyncState
	if err := s.db.WithContext(ctx).Order("scope asc").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).First(&item, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
