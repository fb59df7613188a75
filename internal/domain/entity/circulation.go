package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de circulación.
const (
	CircTypeDeposit    = "deposit"    // entrada
	CircTypeWithdrawal = "withdrawal" // salida
	CircTypeCapture    = "capture"    // conteo absoluto
)

// Estados de evaluación.
const (
	EvalStatusPending  = "pending"
	EvalStatusApproved = "approved"
	EvalStatusRejected = "rejected"
)

// Circulation representa un cambio propuesto (o ya decidido) sobre un Stock.
type Circulation struct {
	ID          string
	StockID     string
	UserID      string // quien propone; puede ser delegado
	CreatedBy   string // quien la registró; vacío en filas antiguas
	Type        string // deposit, withdrawal, capture
	QtyRelative decimal.Decimal
	// QtyBefore guarda el stock previo al aprobar un capture; nil en los demás casos.
	QtyBefore   *decimal.Decimal
	UnitPrice   decimal.Decimal // en moneda principal, tomado al crear
	Amount      decimal.Decimal // UnitPrice * QtyRelative
	Remarks     string
	IsDelegated bool
	EvalStatus  string
	EvalUserID  string // vacío mientras está pendiente
	EvalRemarks string
	// ApprovalSeq orden de aprobación, asignado por el repositorio; 0 si no está aprobada.
	ApprovalSeq int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPending indica si la circulación aún no fue evaluada.
func (c *Circulation) IsPending() bool {
	return c.EvalStatus == EvalStatusPending
}

// ValidCircType reporta si t es un tipo de circulación conocido.
func ValidCircType(t string) bool {
	switch t {
	case CircTypeDeposit, CircTypeWithdrawal, CircTypeCapture:
		return true
	}
	return false
}
