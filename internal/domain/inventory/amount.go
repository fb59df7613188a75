package inventory

import (
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AmountMain valora qty * unitPrice en la moneda principal.
// Devuelve cero si qty, unitPrice o rate no son positivos.
func AmountMain(qty, unitPrice decimal.Decimal, currencyID int64, rate decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() || !unitPrice.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	amount := qty.Mul(unitPrice)
	if currencyID != entity.MainCurrencyID {
		amount = amount.Div(rate)
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// MainUnitPrice convierte un precio unitario a la moneda principal.
func MainUnitPrice(unitPrice decimal.Decimal, currencyID int64, rate decimal.Decimal) decimal.Decimal {
	if currencyID == entity.MainCurrencyID || !rate.IsPositive() {
		return unitPrice
	}
	return unitPrice.Div(rate)
}

// WeeklyWithdrawal promedio semanal de retiros aprobados en una ventana de windowDays días.
func WeeklyWithdrawal(withdrawn decimal.Decimal, windowDays int) decimal.Decimal {
	if windowDays <= 0 || !withdrawn.IsPositive() {
		return decimal.Zero
	}
	weeks := decimal.NewFromInt(int64(windowDays)).Div(decimal.NewFromInt(7))
	return withdrawn.Div(weeks).Round(4)
}

// Scale decimales con que se almacenan cantidades y montos (NUMERIC(20,4)).
const Scale = 4

// ValidScale reporta si d se puede almacenar sin perder decimales.
func ValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// Round redondea d a la escala de almacenamiento.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}
