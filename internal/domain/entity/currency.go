package entity

import "github.com/shopspring/decimal"

// Currency moneda con su tasa respecto a la moneda principal (id 1, rate 1).
type Currency struct {
	ID   int64
	Name string
	Rate decimal.Decimal
}
