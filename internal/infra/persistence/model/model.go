// Package model holds the GORM table mappings of the persistence layer.
package model

// All returns every table model, in dependency order.
func All() []any {
	return []any{
		&CategoryModel{},
		&SourceModel{},
		&ProductModel{},
		&PriceRecordModel{},
		&TickerItemModel{},
		&PushSubscriptionModel{},
		&PushSubscriptionFavoriteModel{},
	}
}
