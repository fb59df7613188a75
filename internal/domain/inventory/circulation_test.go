package inventory_test

import (
	"math/rand"
	"testing"

	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circ(t string, qty int64) *entity.Circulation {
	return &entity.Circulation{Type: t, QtyRelative: decimal.NewFromInt(qty), EvalStatus: entity.EvalStatusPending}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{entity.EvalStatusPending, entity.EvalStatusApproved, true},
		{entity.EvalStatusPending, entity.EvalStatusRejected, true},
		{entity.EvalStatusApproved, entity.EvalStatusPending, true},
		{entity.EvalStatusApproved, entity.EvalStatusRejected, false},
		{entity.EvalStatusRejected, entity.EvalStatusPending, false},
		{entity.EvalStatusRejected, entity.EvalStatusApproved, false},
		{entity.EvalStatusPending, entity.EvalStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyApproval_Deposit(t *testing.T) {
	qty, before, err := inventory.ApplyApproval(decimal.NewFromInt(100), circ(entity.CircTypeDeposit, 20))
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(120)))
	assert.Nil(t, before)
}

func TestApplyApproval_WithdrawalNoPuedeDejarNegativo(t *testing.T) {
	current := decimal.NewFromInt(120)
	qty, _, err := inventory.ApplyApproval(current, circ(entity.CircTypeWithdrawal, 150))
	require.ErrorIs(t, err, domain.ErrNegativeQty)
	assert.Equal(t, domain.KindInvariantViolation, domain.KindOf(err))
	assert.True(t, qty.Equal(current), "la cantidad no cambia si la aprobación falla")
}

func TestApplyApproval_WithdrawalExacta(t *testing.T) {
	qty, _, err := inventory.ApplyApproval(decimal.NewFromInt(15), circ(entity.CircTypeWithdrawal, 15))
	require.NoError(t, err)
	assert.True(t, qty.IsZero())
}

func TestApplyApproval_CaptureGuardaSnapshot(t *testing.T) {
	qty, before, err := inventory.ApplyApproval(decimal.NewFromInt(37), circ(entity.CircTypeCapture, 40))
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, before)
	assert.True(t, before.Equal(decimal.NewFromInt(37)))
}

func TestRevertQty(t *testing.T) {
	t.Run("deposit", func(t *testing.T) {
		q, err := inventory.RevertQty(decimal.NewFromInt(120), circ(entity.CircTypeDeposit, 20))
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.NewFromInt(100)))
	})
	t.Run("withdrawal", func(t *testing.T) {
		q, err := inventory.RevertQty(decimal.NewFromInt(80), circ(entity.CircTypeWithdrawal, 20))
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.NewFromInt(100)))
	})
	t.Run("deposit ya consumido", func(t *testing.T) {
		_, err := inventory.RevertQty(decimal.NewFromInt(5), circ(entity.CircTypeDeposit, 20))
		require.ErrorIs(t, err, domain.ErrRevertNegativeQty)
	})
	t.Run("capture sin snapshot", func(t *testing.T) {
		_, err := inventory.RevertQty(decimal.NewFromInt(5), circ(entity.CircTypeCapture, 9))
		require.ErrorIs(t, err, domain.ErrNotRevertable)
	})
	t.Run("capture con snapshot", func(t *testing.T) {
		c := circ(entity.CircTypeCapture, 9)
		before := decimal.NewFromInt(4)
		c.QtyBefore = &before
		q, err := inventory.RevertQty(decimal.NewFromInt(9), c)
		require.NoError(t, err)
		assert.True(t, q.Equal(before))
	})
}

// Secuencias aleatorias de depósitos/retiros: la cantidad final es Q0 + Σdep − Σret
// de las operaciones aceptadas, y nunca es negativa.
func TestApplyApproval_ConservacionYNoNegatividad(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		q0 := decimal.NewFromInt(rng.Int63n(200))
		qty := q0
		expected := q0
		for i := 0; i < 40; i++ {
			typ := entity.CircTypeDeposit
			if rng.Intn(2) == 0 {
				typ = entity.CircTypeWithdrawal
			}
			c := circ(typ, rng.Int63n(60)+1)
			next, _, err := inventory.ApplyApproval(qty, c)
			if err != nil {
				require.ErrorIs(t, err, domain.ErrNegativeQty)
				assert.True(t, next.Equal(qty))
				continue
			}
			if typ == entity.CircTypeDeposit {
				expected = expected.Add(c.QtyRelative)
			} else {
				expected = expected.Sub(c.QtyRelative)
			}
			qty = next
			require.False(t, qty.IsNegative())
		}
		assert.True(t, qty.Equal(expected), "run %d: %s != %s", run, qty, expected)
	}
}

func TestApplyThenRevert_EsIdentidad(t *testing.T) {
	for _, typ := range []string{entity.CircTypeDeposit, entity.CircTypeWithdrawal, entity.CircTypeCapture} {
		start := decimal.NewFromInt(100)
		c := circ(typ, 30)
		applied, before, err := inventory.ApplyApproval(start, c)
		require.NoError(t, err)
		c.QtyBefore = before
		back, err := inventory.RevertQty(applied, c)
		require.NoError(t, err)
		assert.True(t, back.Equal(start), typ)
	}
}
