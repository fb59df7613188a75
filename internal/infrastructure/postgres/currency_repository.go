package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

var _ repository.CurrencyRepository = (*CurrencyRepo)(nil)

// CurrencyRepo lectura de monedas.
type CurrencyRepo struct {
	q Querier
}

func NewCurrencyRepository(q Querier) *CurrencyRepo {
	return &CurrencyRepo{q: q}
}

// GetByID obtiene una moneda; nil si no existe.
func (r *CurrencyRepo) GetByID(ctx context.Context, id int64) (*entity.Currency, error) {
	var c entity.Currency
	err := r.q.QueryRow(ctx, `SELECT id, name, rate FROM currencies WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}
