package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecordModel is the GORM-specific struct for the 'price_records' table.
// (product_id, date) is unique: one authoritative price per product per day.
// The check and foreign key mirror the goose migration.
type PriceRecordModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	ProductID int64           `gorm:"not null;uniqueIndex:idx_price_records_product_date,priority:1"`
	Product   *ProductModel   `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_price_records_product_date,priority:2;index"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null;check:chk_price_records_price,price > 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PriceRecordModel) TableName() string {
	return "price_records"
}
