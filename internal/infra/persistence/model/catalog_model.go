package model

import (
	"time"

	"gorm.io/datatypes"
)

// CategoryModel is the GORM-specific struct for the 'categories' table.
type CategoryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Slug      string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(255);not null"`
	NameRu    string `gorm:"type:varchar(255);not null;default:''"`
	NameEn    string `gorm:"type:varchar(255);not null;default:''"`
	Icon      string `gorm:"type:varchar(255);not null;default:''"`
	SortOrder int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

// SourceModel is the GORM-specific struct for the 'sources' table.
type SourceModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(255);not null"`
	URL       string `gorm:"type:varchar(512);not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SourceModel) TableName() string {
	return "sources"
}

// ProductModel is the GORM-specific struct for the 'products' table.
type ProductModel struct {
	ID               int64                       `gorm:"primaryKey;autoIncrement"`
	Slug             string                      `gorm:"type:varchar(128);not null;uniqueIndex"`
	Name             string                      `gorm:"type:varchar(255);not null"`
	NameRu           string                      `gorm:"type:varchar(255);not null;default:''"`
	NameEn           string                      `gorm:"type:varchar(255);not null;default:''"`
	Unit             string                      `gorm:"type:varchar(32);not null;default:''"`
	CurrencyLabel    string                      `gorm:"type:varchar(32);not null;default:''"`
	CategoryID       *int64                      `gorm:"index"`
	Category         *CategoryModel              `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	SourceID         *int64                      `gorm:"index"`
	Source           *SourceModel                `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT"`
	IsActive         bool                        `gorm:"not null;index"`
	IsFeatured       bool                        `gorm:"not null"`
	CalculatorConfig datatypes.JSON              `gorm:"type:jsonb"`
	PriceUnits       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	SortOrder        int                         `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}

// TickerItemModel is the GORM-specific struct for the 'ticker_items' table.
type TickerItemModel struct {
	Position  int   `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (TickerItemModel) TableName() string {
	return "ticker_items"
}
