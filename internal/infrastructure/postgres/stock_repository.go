package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, item_id, uom, qty, unit_price, currency_id, amount_main, wf, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetByID obtiene un stock; nil si no existe.
func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1`, id)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockRepo) get(ctx context.Context, query, id string) (*entity.Stock, error) {
	if !validID(id) {
		return nil, nil
	}
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ItemID, &s.UOM, &s.Qty, &s.UnitPrice, &s.CurrencyID, &s.AmountMain, &s.WF, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Update persiste cantidad, amount_main y wf.
func (r *StockRepo) Update(ctx context.Context, s *entity.Stock) error {
	query := `
		UPDATE stocks SET qty = $2, amount_main = $3, wf = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Qty, s.AmountMain, s.WF, s.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeQty
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}
	return nil
}

// Create inserta un stock (carga inicial).
func (r *StockRepo) Create(ctx context.Context, s *entity.Stock) error {
	query := `
		INSERT INTO stocks (id, item_id, uom, qty, unit_price, currency_id, amount_main, wf, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, s.ID, s.ItemID, s.UOM, s.Qty, s.UnitPrice, s.CurrencyID, s.AmountMain, s.WF, s.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeQty
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}
