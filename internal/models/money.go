package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the number of fractional digits stored for amounts.
const MoneyPlaces = 2
