package db

import (
	"exchangecatalog/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.Vendor{},
		&models.CanonicalDataType{},
		&models.CanonicalField{},
		&models.DataTypeField{},
		&models.RestEndpoint{},
		&models.WebSocketChannel{},
		&models.Product{},
		&models.FieldMapping{},
		&models.ProductEndpointLink{},
		&models.ProductChannelLink{},
		&models.SyncState{},
		&models.SystemSetting{},
	); err != nil {
		return err
	}

	// Mapping identity index. Exactly one of endpoint_id/channel_id is set
	// per row, so the absent column must collapse to a comparable value or
	// identical re-registrations would slip past the index as distinct rows.
	// This constraint is what serializes concurrent registration; the
	// "already exists" path is success.
	_, err := db.SQL.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_field_mapping_identity
		ON field_mappings (
			vendor_id, canonical_field_id, source_type, entity_type,
			vendor_field_path, COALESCE(endpoint_id, 0), COALESCE(channel_id, 0)
		)`)
	return err
}
