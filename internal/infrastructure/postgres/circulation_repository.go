package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

var _ repository.CirculationRepository = (*CirculationRepo)(nil)

const circColumns = `c.id, c.stock_id, c.user_id, c.created_by, c.type, c.qty_relative, c.qty_before, c.unit_price, c.amount,
	c.remarks, c.is_delegated, c.eval_status, c.eval_user_id, c.eval_remarks, c.approval_seq, c.created_at, c.updated_at`

// orden de listado; updated por defecto.
var circSorts = map[string]string{
	"updated":     "c.updated_at DESC, c.id",
	"created":     "c.created_at DESC, c.id",
	"amount_low":  "c.amount ASC, c.id",
	"amount_high": "c.amount DESC, c.id",
	"qty_low":     "c.qty_relative ASC, c.id",
	"qty_high":    "c.qty_relative DESC, c.id",
}

// CirculationRepo implementación de CirculationRepository sobre PostgreSQL (usable con pool o tx).
type CirculationRepo struct {
	q Querier
}

// NewCirculationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCirculationRepository(q Querier) *CirculationRepo {
	return &CirculationRepo{q: q}
}

// Create persiste una circulación.
func (r *CirculationRepo) Create(ctx context.Context, c *entity.Circulation) error {
	query := `
		INSERT INTO circulations (id, stock_id, user_id, created_by, type, qty_relative, qty_before, unit_price, amount,
			remarks, is_delegated, eval_status, eval_user_id, eval_remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.StockID, c.UserID, nullString(c.CreatedBy), c.Type, c.QtyRelative, c.QtyBefore, c.UnitPrice, c.Amount,
		c.Remarks, c.IsDelegated, c.EvalStatus, nullString(c.EvalUserID), nullString(c.EvalRemarks),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create circulation: %w", err)
	}
	return nil
}

// GetByID obtiene una circulación; nil si no existe.
func (r *CirculationRepo) GetByID(ctx context.Context, id string) (*entity.Circulation, error) {
	return r.get(ctx, `SELECT `+circColumns+` FROM circulations c WHERE c.id = $1`, id)
}

// GetForUpdate obtiene la circulación bloqueando su fila.
func (r *CirculationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Circulation, error) {
	return r.get(ctx, `SELECT `+circColumns+` FROM circulations c WHERE c.id = $1 FOR UPDATE`, id)
}

func (r *CirculationRepo) get(ctx context.Context, query, id string) (*entity.Circulation, error) {
	if !validID(id) {
		return nil, nil
	}
	c, err := scanCirculation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get circulation: %w", err)
	}
	return c, nil
}

// Update persiste los campos mutables de la circulación. approval_seq se toma de la secuencia
// al pasar a aprobada y se limpia en cualquier otro estado.
func (r *CirculationRepo) Update(ctx context.Context, c *entity.Circulation) error {
	query := `
		UPDATE circulations SET user_id = $2, qty_relative = $3, qty_before = $4, amount = $5, remarks = $6,
			is_delegated = $7, eval_status = $8::text, eval_user_id = $9, eval_remarks = $10, updated_at = $11,
			approval_seq = CASE WHEN $8::text = 'approved'
				THEN COALESCE(approval_seq, nextval('circulation_approval_seq')) ELSE NULL END
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.UserID, c.QtyRelative, c.QtyBefore, c.Amount, c.Remarks,
		c.IsDelegated, c.EvalStatus, nullString(c.EvalUserID), nullString(c.EvalRemarks), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update circulation: %w", err)
	}
	return nil
}

// LatestApproved última circulación aprobada del stock por orden de aprobación.
// Las filas aprobadas antes de approval_seq quedan detrás, ordenadas por updated_at.
func (r *CirculationRepo) LatestApproved(ctx context.Context, stockID string) (*entity.Circulation, error) {
	query := `SELECT ` + circColumns + ` FROM circulations c
		WHERE c.stock_id = $1 AND c.eval_status = $2
		ORDER BY c.approval_seq DESC NULLS LAST, c.updated_at DESC, c.id DESC LIMIT 1`
	c, err := scanCirculation(r.q.QueryRow(ctx, query, stockID, entity.EvalStatusApproved))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest approved circulation: %w", err)
	}
	return c, nil
}

// SumApprovedWithdrawals suma de retiros aprobados del stock desde since.
func (r *CirculationRepo) SumApprovedWithdrawals(ctx context.Context, stockID string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(qty_relative), 0) FROM circulations
		WHERE stock_id = $1 AND type = $2 AND eval_status = $3 AND updated_at >= $4`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, stockID, entity.CircTypeWithdrawal, entity.EvalStatusApproved, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum withdrawals: %w", err)
	}
	return sum, nil
}

// List lista circulaciones con filtros; devuelve además el total sin paginar.
func (r *CirculationRepo) List(ctx context.Context, f repository.CirculationFilter) ([]*entity.Circulation, int, error) {
	where, args := circWhere(f)
	from := ` FROM circulations c JOIN users u ON u.id = c.user_id` + where

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count circulations: %w", err)
	}

	order, ok := circSorts[f.Sort]
	if !ok {
		order = circSorts["updated"]
	}
	pos := len(args) + 1
	query := `SELECT ` + circColumns + from + fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", order, pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list circulations: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Circulation, 0)
	for rows.Next() {
		c, err := scanCirculation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan circulation: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func circWhere(f repository.CirculationFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.StockID != "" {
		if !validID(f.StockID) {
			conds = append(conds, "FALSE")
		} else {
			add("c.stock_id = $%d", f.StockID)
		}
	}
	if len(f.Statuses) > 0 {
		add("c.eval_status = ANY($%d)", f.Statuses)
	}
	if len(f.Types) > 0 {
		add("c.type = ANY($%d)", f.Types)
	}
	if f.User != "" {
		add("(u.name ILIKE $%[1]d OR u.emp_id ILIKE $%[1]d)", "%"+f.User+"%")
	}
	if f.Q != "" {
		add("c.remarks ILIKE $%d", "%"+f.Q+"%")
	}
	if f.From != nil {
		add("c.updated_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("c.updated_at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// SummarizeApproved totales por tipo de las circulaciones aprobadas en [from, to].
func (r *CirculationRepo) SummarizeApproved(ctx context.Context, from, to time.Time) ([]repository.CirculationTotal, error) {
	query := `
		SELECT type, COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(qty_relative), 0)
		FROM circulations
		WHERE eval_status = $1 AND updated_at >= $2 AND updated_at <= $3
		GROUP BY type ORDER BY type`
	rows, err := r.q.Query(ctx, query, entity.EvalStatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize circulations: %w", err)
	}
	defer rows.Close()
	var out []repository.CirculationTotal
	for rows.Next() {
		var t repository.CirculationTotal
		if err := rows.Scan(&t.Type, &t.Count, &t.Amount, &t.Qty); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanCirculation(row pgx.Row) (*entity.Circulation, error) {
	var c entity.Circulation
	var createdBy, evalUser, evalRemarks *string
	var approvalSeq *int64
	err := row.Scan(
		&c.ID, &c.StockID, &c.UserID, &createdBy, &c.Type, &c.QtyRelative, &c.QtyBefore, &c.UnitPrice, &c.Amount,
		&c.Remarks, &c.IsDelegated, &c.EvalStatus, &evalUser, &evalRemarks, &approvalSeq, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = derefString(createdBy)
	if approvalSeq != nil {
		c.ApprovalSeq = *approvalSeq
	}
	c.EvalUserID = derefString(evalUser)
	c.EvalRemarks = derefString(evalRemarks)
	return &c, nil
}
