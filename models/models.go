package models

import "github.com/shopspring/decimal"

// Money is serialised as a JSON number.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Shop{},
		&User{},
		&Client{},
		&Treatment{},
		&Order{},
		&OrderTreatment{},
		&NotificationEvent{},
	}
}
