package repository

import (
	"context"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// StockRepository define el puerto para leer/actualizar stock.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Stock, error)
	Update(ctx context.Context, stock *entity.Stock) error
}
