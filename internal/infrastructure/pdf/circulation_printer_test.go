package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"25000":     "25.000,00",
		"1234567.5": "1.234.567,50",
		"999.999":   "1.000,00",
		"-1500":     "-1.500,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestPrintCirculations_GeneraPDF(t *testing.T) {
	p := NewCirculationPrinter("Circulaciones de stock")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	circs := []*entity.Circulation{
		{ID: "c-1", StockID: "s-1", Type: entity.CircTypeDeposit, QtyRelative: decimal.NewFromInt(20),
			UnitPrice: decimal.RequireFromString("2.5"), Amount: decimal.NewFromInt(50), Remarks: "compra",
			EvalStatus: entity.EvalStatusApproved, EvalRemarks: "ok", CreatedAt: now},
		{ID: "c-2", StockID: "s-x", Type: entity.CircTypeCapture, QtyRelative: decimal.NewFromInt(3),
			EvalStatus: entity.EvalStatusPending, CreatedAt: now},
	}
	stocks := map[string]*entity.Stock{"s-1": {ID: "s-1", ItemID: "tornillo", UOM: "und"}}

	out, err := p.PrintCirculations(context.Background(), circs, stocks)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
