// Package memstore repositorios en memoria para tests de casos de uso y handlers.
// Las transacciones se serializan y, si la función falla, se restaura el estado previo.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	txMu sync.Mutex // serializa transacciones (equivale al bloqueo de filas)
	mu   sync.Mutex

	stocks     map[string]*entity.Stock
	circs      map[string]*entity.Circulation
	currencies map[int64]*entity.Currency
	users      map[string]*entity.User
	approvals  int64 // secuencia de aprobación; no retrocede en rollback
}

// New crea un store vacío con la moneda principal (rate 1).
func New() *Store {
	s := &Store{
		stocks:     make(map[string]*entity.Stock),
		circs:      make(map[string]*entity.Circulation),
		currencies: make(map[int64]*entity.Currency),
		users:      make(map[string]*entity.User),
	}
	s.AddCurrency(&entity.Currency{ID: entity.MainCurrencyID, Name: "COP", Rate: decimal.NewFromInt(1)})
	return s
}

// ── Fixtures ──────────────────────────────────────────────────────────────

func (s *Store) AddStock(st *entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[st.ID] = cloneStock(st)
}

func (s *Store) AddCurrency(c *entity.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.currencies[c.ID] = &cp
}

func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

// AddCirculation inserta una circulación tal cual (sin pasar por el caso de uso).
func (s *Store) AddCirculation(c *entity.Circulation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circs[c.ID] = cloneCirc(c)
}

// Stock copia del stock actual, nil si no existe.
func (s *Store) Stock(id string) *entity.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStock(s.stocks[id])
}

// Circulation copia de la circulación actual, nil si no existe.
func (s *Store) Circulation(id string) *entity.Circulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCirc(s.circs[id])
}

// ── Repositorios ──────────────────────────────────────────────────────────

// Stocks repositorio de stock.
func (s *Store) Stocks() repository.StockRepository { return stockRepo{s} }

// Circulations repositorio de circulaciones.
func (s *Store) Circulations() repository.CirculationRepository { return circRepo{s} }

// Currencies repositorio de monedas.
func (s *Store) Currencies() repository.CurrencyRepository { return currencyRepo{s} }

// Users directorio de usuarios.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Run ejecuta fn de forma serializada; si devuelve error se descartan sus escrituras.
func (s *Store) Run(ctx context.Context, fn func(
	repository.CirculationRepository,
	repository.StockRepository,
	repository.CurrencyRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	stocks, circs := s.snapshot()
	if err := fn(circRepo{s}, stockRepo{s}, currencyRepo{s}); err != nil {
		s.mu.Lock()
		s.stocks, s.circs = stocks, circs
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*entity.Stock, map[string]*entity.Circulation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stocks := make(map[string]*entity.Stock, len(s.stocks))
	for k, v := range s.stocks {
		stocks[k] = cloneStock(v)
	}
	circs := make(map[string]*entity.Circulation, len(s.circs))
	for k, v := range s.circs {
		circs[k] = cloneCirc(v)
	}
	return stocks, circs
}

type stockRepo struct{ s *Store }

func (r stockRepo) GetByID(_ context.Context, id string) (*entity.Stock, error) {
	return r.s.Stock(id), nil
}

func (r stockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	return r.GetByID(ctx, id)
}

func (r stockRepo) Update(_ context.Context, st *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stocks[st.ID]; ok {
		r.s.stocks[st.ID] = cloneStock(st)
	}
	return nil
}

type circRepo struct{ s *Store }

func (r circRepo) Create(_ context.Context, c *entity.Circulation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.circs[c.ID] = cloneCirc(c)
	return nil
}

func (r circRepo) GetByID(_ context.Context, id string) (*entity.Circulation, error) {
	return r.s.Circulation(id), nil
}

func (r circRepo) GetForUpdate(ctx context.Context, id string) (*entity.Circulation, error) {
	return r.GetByID(ctx, id)
}

// Update asigna ApprovalSeq al pasar a aprobada y lo limpia en cualquier otro estado.
func (r circRepo) Update(_ context.Context, c *entity.Circulation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.circs[c.ID]
	if !ok {
		return nil
	}
	cp := cloneCirc(c)
	switch {
	case cp.EvalStatus != entity.EvalStatusApproved:
		cp.ApprovalSeq = 0
	case prev.EvalStatus == entity.EvalStatusApproved && prev.ApprovalSeq > 0:
		cp.ApprovalSeq = prev.ApprovalSeq
	default:
		r.s.approvals++
		cp.ApprovalSeq = r.s.approvals
	}
	r.s.circs[c.ID] = cp
	return nil
}

func (r circRepo) LatestApproved(_ context.Context, stockID string) (*entity.Circulation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Circulation
	for _, c := range r.s.circs {
		if c.StockID != stockID || c.EvalStatus != entity.EvalStatusApproved {
			continue
		}
		if latest == nil || laterApproval(c, latest) {
			latest = c
		}
	}
	return cloneCirc(latest), nil
}

func (r circRepo) SumApprovedWithdrawals(_ context.Context, stockID string, since time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, c := range r.s.circs {
		if c.StockID == stockID && c.Type == entity.CircTypeWithdrawal &&
			c.EvalStatus == entity.EvalStatusApproved && !c.UpdatedAt.Before(since) {
			sum = sum.Add(c.QtyRelative)
		}
	}
	return sum, nil
}

func (r circRepo) List(_ context.Context, f repository.CirculationFilter) ([]*entity.Circulation, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Circulation
	for _, c := range r.s.circs {
		if r.match(c, f) {
			out = append(out, cloneCirc(c))
		}
	}
	sortCircs(out, f.Sort)
	total := len(out)
	if f.Offset >= len(out) {
		return []*entity.Circulation{}, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r circRepo) match(c *entity.Circulation, f repository.CirculationFilter) bool {
	if f.StockID != "" && c.StockID != f.StockID {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, c.EvalStatus) {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, c.Type) {
		return false
	}
	if f.Q != "" && !strings.Contains(strings.ToLower(c.Remarks), strings.ToLower(f.Q)) {
		return false
	}
	if f.From != nil && c.UpdatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && c.UpdatedAt.After(*f.To) {
		return false
	}
	if f.User != "" {
		u := r.s.users[c.UserID]
		if u == nil {
			return false
		}
		needle := strings.ToLower(f.User)
		if !strings.Contains(strings.ToLower(u.Name), needle) && !strings.Contains(strings.ToLower(u.EmpID), needle) {
			return false
		}
	}
	return true
}

func (r circRepo) SummarizeApproved(_ context.Context, from, to time.Time) ([]repository.CirculationTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byType := map[string]*repository.CirculationTotal{}
	for _, c := range r.s.circs {
		if c.EvalStatus != entity.EvalStatusApproved || c.UpdatedAt.Before(from) || c.UpdatedAt.After(to) {
			continue
		}
		t, ok := byType[c.Type]
		if !ok {
			t = &repository.CirculationTotal{Type: c.Type, Amount: decimal.Zero, Qty: decimal.Zero}
			byType[c.Type] = t
		}
		t.Count++
		t.Amount = t.Amount.Add(c.Amount)
		t.Qty = t.Qty.Add(c.QtyRelative)
	}
	out := make([]repository.CirculationTotal, 0, len(byType))
	for _, t := range byType {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

type currencyRepo struct{ s *Store }

func (r currencyRepo) GetByID(_ context.Context, id int64) (*entity.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.currencies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmpID(_ context.Context, empID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.EmpID == empID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── helpers ───────────────────────────────────────────────────────────────

// laterApproval ordena por ApprovalSeq; las filas sin secuencia van detrás, por updated_at.
func laterApproval(a, b *entity.Circulation) bool {
	if a.ApprovalSeq != b.ApprovalSeq {
		return a.ApprovalSeq > b.ApprovalSeq
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

func sortCircs(cs []*entity.Circulation, mode string) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		switch mode {
		case "created":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case "amount_low":
			if !a.Amount.Equal(b.Amount) {
				return a.Amount.LessThan(b.Amount)
			}
		case "amount_high":
			if !a.Amount.Equal(b.Amount) {
				return a.Amount.GreaterThan(b.Amount)
			}
		case "qty_low":
			if !a.QtyRelative.Equal(b.QtyRelative) {
				return a.QtyRelative.LessThan(b.QtyRelative)
			}
		case "qty_high":
			if !a.QtyRelative.Equal(b.QtyRelative) {
				return a.QtyRelative.GreaterThan(b.QtyRelative)
			}
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		}
		return a.ID < b.ID
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneStock(st *entity.Stock) *entity.Stock {
	if st == nil {
		return nil
	}
	cp := *st
	return &cp
}

func cloneCirc(c *entity.Circulation) *entity.Circulation {
	if c == nil {
		return nil
	}
	cp := *c
	if c.QtyBefore != nil {
		v := *c.QtyBefore
		cp.QtyBefore = &v
	}
	return &cp
}
