package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CirculationFilter criterios de listado de circulaciones.
type CirculationFilter struct {
	StockID  string
	Statuses []string
	Types    []string
	User     string // nombre o número de empleado (substring)
	Q        string // texto libre sobre remarks
	From     *time.Time
	To       *time.Time
	Sort     string // updated, created, amount_low, amount_high, qty_low, qty_high
	Limit    int
	Offset   int
}

// CirculationTotal suma de circulaciones aprobadas de un tipo.
type CirculationTotal struct {
	Type   string
	Count  int
	Amount decimal.Decimal
	Qty    decimal.Decimal
}

// CirculationRepository define el puerto de persistencia para circulaciones.
type CirculationRepository interface {
	Create(ctx context.Context, circ *entity.Circulation) error
	GetByID(ctx context.Context, id string) (*entity.Circulation, error)
	// GetForUpdate bloquea la fila de la circulación. nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Circulation, error)
	Update(ctx context.Context, circ *entity.Circulation) error
	// LatestApproved devuelve la circulación aprobada más reciente (updated_at desc) del stock, o nil.
	LatestApproved(ctx context.Context, stockID string) (*entity.Circulation, error)
	// SumApprovedWithdrawals suma qty_relative de retiros aprobados desde since.
	SumApprovedWithdrawals(ctx context.Context, stockID string, since time.Time) (decimal.Decimal, error)
	List(ctx context.Context, f CirculationFilter) ([]*entity.Circulation, int, error)
	SummarizeApproved(ctx context.Context, from, to time.Time) ([]CirculationTotal, error)
}
