package db

import (
	"gorm.io/gorm/clause"

	"exchangecatalog/internal/models"
)

// canonicalSchema fixes the entity types and the canonical fields each one
// requires. The per-type field sets are the coverage denominators.
var canonicalSchema = map[string][]string{
	"ticker": {
		"symbol",
		"last_price",
		"bid_price",
		"ask_price",
		"best_bid_size",
		"best_ask_size",
		"open_24h",
		"high_24h",
		"low_24h",
		"volume_24h",
		"volume_30d",
		"timestamp",
	},
	"order_book": {
		"symbol",
		"bids",
		"asks",
		"sequence",
		"timestamp",
	},
	"trade": {
		"symbol",
		"trade_id",
		"price",
		"size",
		"side",
		"timestamp",
	},
	"candle": {
		"symbol",
		"open",
		"high",
		"low",
		"close",
		"volume",
		"timestamp",
	},
}

// SeedCanonicalSchema inserts the static reference data the resolver works
// against. Safe to run on every startup; existing rows are left untouched.
func SeedCanonicalSchema(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}

	fieldNames := map[string]struct{}{}
	for _, fields := range canonicalSchema {
		for _, name := range fields {
			fieldNames[name] = struct{}{}
		}
	}

	for typeName, fields := range canonicalSchema {
		dataType := models.CanonicalDataType{DataTypeName: typeName}
		if err := db.Gorm.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "data_type_name"}},
			DoNothing: true,
		}).Create(&dataType).Error; err != nil {
			return err
		}
		if dataType.DataTypeID == 0 {
			if err := db.Gorm.Where("data_type_name = ?", typeName).
				First(&dataType).Error; err != nil {
				return err
			}
		}

		for _, fieldName := range fields {
			field := models.CanonicalField{FieldName: fieldName}
			if err := db.Gorm.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "field_name"}},
				DoNothing: true,
			}).Create(&field).Error; err != nil {
				return err
			}
			if field.CanonicalFieldID == 0 {
				if err := db.Gorm.Where("field_name = ?", fieldName).
					First(&field).Error; err != nil {
					return err
				}
			}

			assoc := models.DataTypeField{
				DataTypeID:       dataType.DataTypeID,
				CanonicalFieldID: field.CanonicalFieldID,
			}
			if err := db.Gorm.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&assoc).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
