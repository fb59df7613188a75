package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MainCurrencyID es la moneda principal (rate = 1); amount_main siempre se expresa en ella.
const MainCurrencyID int64 = 1

// Stock representa la cantidad disponible de un ítem en una moneda y precio unitario.
// Solo la aprobación o reversión de una Circulation lo modifica.
type Stock struct {
	ID         string
	ItemID     string
	UOM        string
	Qty        decimal.Decimal
	UnitPrice  decimal.Decimal
	CurrencyID int64
	AmountMain decimal.Decimal // qty * unit_price normalizado a la moneda principal
	WF         decimal.Decimal // retiro semanal promedio
	UpdatedAt  time.Time
}
