package inventory

import (
	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CanTransition reporta si el estado de evaluación puede pasar de from a to.
// rejected es terminal; approved solo vuelve a pending (reversión).
func CanTransition(from, to string) bool {
	switch from {
	case entity.EvalStatusPending:
		return to == entity.EvalStatusApproved || to == entity.EvalStatusRejected
	case entity.EvalStatusApproved:
		return to == entity.EvalStatusPending
	}
	return false
}

// ApplyApproval calcula la cantidad del stock tras aprobar circ.
// Para capture devuelve además el snapshot de la cantidad previa.
func ApplyApproval(current decimal.Decimal, circ *entity.Circulation) (decimal.Decimal, *decimal.Decimal, error) {
	switch circ.Type {
	case entity.CircTypeDeposit:
		return current.Add(circ.QtyRelative), nil, nil
	case entity.CircTypeWithdrawal:
		next := current.Sub(circ.QtyRelative)
		if next.IsNegative() {
			return current, nil, domain.ErrNegativeQty
		}
		return next, nil, nil
	case entity.CircTypeCapture:
		if circ.QtyRelative.IsNegative() {
			return current, nil, domain.ErrNegativeQty
		}
		before := current
		return circ.QtyRelative, &before, nil
	}
	return current, nil, domain.ErrValidation
}

// RevertQty calcula la cantidad del stock antes de que circ fuera aprobada.
func RevertQty(current decimal.Decimal, circ *entity.Circulation) (decimal.Decimal, error) {
	var reverted decimal.Decimal
	switch circ.Type {
	case entity.CircTypeDeposit:
		reverted = current.Sub(circ.QtyRelative)
	case entity.CircTypeWithdrawal:
		reverted = current.Add(circ.QtyRelative)
	case entity.CircTypeCapture:
		// sin snapshot no hay un valor previo bien definido
		if circ.QtyBefore == nil {
			return current, domain.ErrNotRevertable
		}
		reverted = *circ.QtyBefore
	default:
		return current, domain.ErrValidation
	}
	if reverted.IsNegative() {
		return current, domain.ErrRevertNegativeQty
	}
	return reverted, nil
}

// RequiresPositiveQty indica si el tipo exige qty_relative > 0.
func RequiresPositiveQty(circType string) bool {
	return circType == entity.CircTypeDeposit || circType == entity.CircTypeWithdrawal
}
