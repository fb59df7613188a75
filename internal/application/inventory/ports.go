package inventory

import (
	"context"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad de la evaluación y la reversión: o se escriben circulación y stock, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		circRepo repository.CirculationRepository,
		stockRepo repository.StockRepository,
		currencyRepo repository.CurrencyRepository,
	) error) error
}

// AuthorizationPolicy decide las capacidades del actor sobre una circulación.
type AuthorizationPolicy interface {
	CanCreate(actor entity.Actor, circ *entity.Circulation) bool
	CanEdit(actor entity.Actor, circ *entity.Circulation) bool
	CanEvaluate(actor entity.Actor, circ *entity.Circulation) bool
	CanDelegate(actor entity.Actor) bool
}

// StockLocker bloqueo entre procesos por stock. Es de mejor esfuerzo: el bloqueo de fila
// dentro de la transacción sigue siendo la garantía.
type StockLocker interface {
	Lock(ctx context.Context, stockID string) (unlock func())
}

// CirculationPrinter genera la hoja imprimible de un conjunto de circulaciones.
type CirculationPrinter interface {
	PrintCirculations(ctx context.Context, circs []*entity.Circulation, stocks map[string]*entity.Stock) ([]byte, error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) func() { return func() {} }
