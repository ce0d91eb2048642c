package models

// CanonicalDataType is a category of market data (ticker, order_book, trade,
// candle). Static reference data, seeded once and never vendor-scoped.
type CanonicalDataType struct {
	DataTypeID   uint64 `gorm:"primaryKey;autoIncrement"`
	DataTypeName string `gorm:"type:varchar(40);not null;uniqueIndex"`
	Description  string `gorm:"type:text"`
}

func (CanonicalDataType) TableName() string {
	return "canonical_data_types"
}

// CanonicalField is a normalized, vendor-independent market-data attribute.
type CanonicalField struct {
	CanonicalFieldID uint64 `gorm:"primaryKey;autoIncrement"`
	FieldName        string `gorm:"type:varchar(60);not null;uniqueIndex"`
	Description      string `gorm:"type:text"`
}

func (CanonicalField) TableName() string {
	return "canonical_fields"
}

// DataTypeField fixes which canonical fields a data type requires. This set
// is the coverage denominator: fields mapped outside it do not count.
type DataTypeField struct {
	DataTypeID       uint64 `gorm:"primaryKey;autoIncrement:false"`
	CanonicalFieldID uint64 `gorm:"primaryKey;autoIncrement:false"`
}

func (DataTypeField) TableName() string {
	return "data_type_fields"
}
