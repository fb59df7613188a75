package repository

import (
	"context"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// CurrencyRepository puerto de lectura de monedas y tasas.
type CurrencyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Currency, error)
}
