package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

// CirculationConfig opciones del caso de uso. Locker, Printer y Clock son opcionales.
type CirculationConfig struct {
	WFWindowDays int // ventana para el promedio semanal de retiros (wf)
	Locker       StockLocker
	Printer      CirculationPrinter
	Clock        func() time.Time
}

// CirculationUseCase ledger de circulaciones de stock: creación, edición, evaluación y reversión.
// Toda mutación de stock ocurre dentro de TxRunner con las filas bloqueadas (SELECT FOR UPDATE).
type CirculationUseCase struct {
	txRunner     TxRunner
	circRepo     repository.CirculationRepository
	stockRepo    repository.StockRepository
	userRepo     repository.UserRepository
	policy       AuthorizationPolicy
	locker       StockLocker
	printer      CirculationPrinter
	now          func() time.Time
	wfWindowDays int
	log          zerolog.Logger
}

// NewCirculationUseCase construye el caso de uso.
func NewCirculationUseCase(
	txRunner TxRunner,
	circRepo repository.CirculationRepository,
	stockRepo repository.StockRepository,
	userRepo repository.UserRepository,
	policy AuthorizationPolicy,
	cfg CirculationConfig,
	log zerolog.Logger,
) *CirculationUseCase {
	uc := &CirculationUseCase{
		txRunner:     txRunner,
		circRepo:     circRepo,
		stockRepo:    stockRepo,
		userRepo:     userRepo,
		policy:       policy,
		locker:       cfg.Locker,
		printer:      cfg.Printer,
		now:          cfg.Clock,
		wfWindowDays: cfg.WFWindowDays,
		log:          log.With().Str("component", "circulation").Logger(),
	}
	if uc.locker == nil {
		uc.locker = noopLocker{}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.wfWindowDays <= 0 {
		uc.wfWindowDays = 28
	}
	return uc
}

// Create registra una circulación pendiente; el stock no se toca hasta su aprobación.
// El precio unitario se toma del stock y se normaliza a la moneda principal.
func (uc *CirculationUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateCirculationRequest) (*dto.CirculationResponse, error) {
	in.Remarks = strings.TrimSpace(in.Remarks)
	in.UserRef = strings.TrimSpace(in.UserRef)
	in.StockID = strings.TrimSpace(in.StockID)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !inventory.ValidScale(in.QtyRelative) {
		return nil, domain.ErrQtyScale
	}
	if inventory.RequiresPositiveQty(in.Type) && !in.QtyRelative.IsPositive() {
		return nil, domain.ErrZeroQty
	}
	userID := actor.ID
	if in.UserRef != "" {
		var err error
		if userID, err = uc.resolveUser(ctx, in.UserRef); err != nil {
			return nil, err
		}
	}
	if userID != actor.ID && !uc.policy.CanDelegate(actor) {
		return nil, domain.ErrDelegationDenied
	}

	var created *entity.Circulation
	err := uc.txRunner.Run(ctx, func(
		circRepo repository.CirculationRepository,
		stockRepo repository.StockRepository,
		currencyRepo repository.CurrencyRepository,
	) error {
		stock, err := stockRepo.GetByID(ctx, in.StockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrStockNotFound
		}
		currency, err := currencyRepo.GetByID(ctx, stock.CurrencyID)
		if err != nil {
			return err
		}
		if currency == nil {
			return domain.ErrCurrencyNotFound
		}

		now := uc.now()
		unitPrice := inventory.Round(inventory.MainUnitPrice(stock.UnitPrice, stock.CurrencyID, currency.Rate))
		circ := &entity.Circulation{
			ID:          uuid.New().String(),
			StockID:     stock.ID,
			UserID:      userID,
			CreatedBy:   actor.ID,
			Type:        in.Type,
			QtyRelative: in.QtyRelative,
			UnitPrice:   unitPrice,
			Amount:      inventory.Round(unitPrice.Mul(in.QtyRelative)),
			Remarks:     in.Remarks,
			IsDelegated: userID != actor.ID,
			EvalStatus:  entity.EvalStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !uc.policy.CanCreate(actor, circ) {
			return domain.ErrCreateDenied
		}
		if err := circRepo.Create(ctx, circ); err != nil {
			return err
		}
		created = circ
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("stock_id", in.StockID).Str("actor_id", actor.ID).Msg("crear circulación")
		return nil, err
	}
	uc.log.Info().
		Str("circ_id", created.ID).
		Str("stock_id", created.StockID).
		Str("type", created.Type).
		Str("qty", created.QtyRelative.String()).
		Str("actor_id", actor.ID).
		Bool("delegated", created.IsDelegated).
		Msg("circulación creada")
	return toCirculationResponse(created), nil
}

// Update edita cantidad, observaciones y usuario de una circulación pendiente.
// Los permisos se evalúan sobre la circulación tal como está guardada. Sin user_ref se conserva
// el usuario actual; reasignarla a otro usuario es delegar.
func (uc *CirculationUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateCirculationRequest) (*dto.CirculationResponse, error) {
	in.Remarks = strings.TrimSpace(in.Remarks)
	in.UserRef = strings.TrimSpace(in.UserRef)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !inventory.ValidScale(in.QtyRelative) {
		return nil, domain.ErrQtyScale
	}
	var userID string
	if in.UserRef != "" {
		var err error
		if userID, err = uc.resolveUser(ctx, in.UserRef); err != nil {
			return nil, err
		}
	}

	var updated *entity.Circulation
	err := uc.txRunner.Run(ctx, func(
		circRepo repository.CirculationRepository,
		_ repository.StockRepository,
		_ repository.CurrencyRepository,
	) error {
		circ, err := circRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if circ == nil {
			return domain.ErrCircNotFound
		}
		if !circ.IsPending() {
			return domain.ErrNotEditable
		}
		if !uc.policy.CanEdit(actor, circ) {
			return domain.ErrEditDenied
		}
		if inventory.RequiresPositiveQty(circ.Type) && !in.QtyRelative.IsPositive() {
			return domain.ErrZeroQty
		}

		next := *circ
		if userID != "" && userID != circ.UserID {
			if userID != actor.ID && !uc.policy.CanDelegate(actor) {
				return domain.ErrDelegationDenied
			}
			next.UserID = userID
		}
		switch {
		case circ.CreatedBy != "":
			next.IsDelegated = next.UserID != circ.CreatedBy
		case next.UserID != circ.UserID:
			next.IsDelegated = next.UserID != actor.ID
		}
		next.QtyRelative = in.QtyRelative
		next.Amount = inventory.Round(circ.UnitPrice.Mul(in.QtyRelative))
		next.Remarks = in.Remarks
		next.UpdatedAt = uc.now()
		if err := circRepo.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("circ_id", id).Str("actor_id", actor.ID).Msg("actualizar circulación")
		return nil, err
	}
	uc.log.Info().
		Str("circ_id", id).
		Str("user_id", updated.UserID).
		Str("actor_id", actor.ID).
		Msg("circulación actualizada")
	return toCirculationResponse(updated), nil
}

// Get obtiene una circulación por ID.
func (uc *CirculationUseCase) Get(ctx context.Context, id string) (*dto.CirculationResponse, error) {
	circ, err := uc.circRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if circ == nil {
		return nil, domain.ErrCircNotFound
	}
	return toCirculationResponse(circ), nil
}

// GetStock obtiene un stock por ID.
func (uc *CirculationUseCase) GetStock(ctx context.Context, id string) (*dto.StockResponse, error) {
	stock, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrStockNotFound
	}
	return toStockResponse(stock), nil
}

// List lista circulaciones con filtros y paginación.
func (uc *CirculationUseCase) List(ctx context.Context, q dto.CirculationListQuery) (*dto.CirculationListResponse, error) {
	q.DefaultPage()
	for _, s := range q.Statuses {
		if s != entity.EvalStatusPending && s != entity.EvalStatusApproved && s != entity.EvalStatusRejected {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrValidation, s)
		}
	}
	for _, t := range q.Types {
		if !entity.ValidCircType(t) {
			return nil, fmt.Errorf("%w: tipo %q", domain.ErrValidation, t)
		}
	}
	list, total, err := uc.circRepo.List(ctx, repository.CirculationFilter{
		StockID:  q.StockID,
		Statuses: q.Statuses,
		Types:    q.Types,
		User:     strings.TrimSpace(q.User),
		Q:        strings.TrimSpace(q.Q),
		From:     q.From,
		To:       q.To,
		Sort:     q.Sort,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CirculationResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCirculationResponse(c))
	}
	return &dto.CirculationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Summary suma las circulaciones aprobadas por tipo en el rango [from, to].
func (uc *CirculationUseCase) Summary(ctx context.Context, from, to time.Time) (*dto.CirculationSummaryResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: rango de fechas", domain.ErrValidation)
	}
	totals, err := uc.circRepo.SummarizeApproved(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.CirculationSummaryResponse{From: from, To: to, Totals: make([]dto.CirculationTotalDTO, 0, len(totals)), Net: decimal.Zero}
	for _, t := range totals {
		out.Totals = append(out.Totals, dto.CirculationTotalDTO{Type: t.Type, Count: t.Count, Amount: t.Amount, Qty: t.Qty})
		switch t.Type {
		case entity.CircTypeDeposit:
			out.Net = out.Net.Add(t.Amount)
		case entity.CircTypeWithdrawal:
			out.Net = out.Net.Sub(t.Amount)
		}
	}
	return out, nil
}

// Print genera el PDF con las circulaciones indicadas.
func (uc *CirculationUseCase) Print(ctx context.Context, ids []string) ([]byte, error) {
	if uc.printer == nil {
		return nil, fmt.Errorf("impresión no configurada")
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no hay circulaciones seleccionadas", domain.ErrValidation)
	}
	circs := make([]*entity.Circulation, 0, len(ids))
	stocks := make(map[string]*entity.Stock)
	for _, id := range ids {
		circ, err := uc.circRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if circ == nil {
			return nil, domain.ErrCircNotFound
		}
		if _, ok := stocks[circ.StockID]; !ok {
			stock, err := uc.stockRepo.GetByID(ctx, circ.StockID)
			if err != nil {
				return nil, err
			}
			if stock == nil {
				return nil, domain.ErrStockNotFound
			}
			stocks[circ.StockID] = stock
		}
		circs = append(circs, circ)
	}
	return uc.printer.PrintCirculations(ctx, circs, stocks)
}

// resolveUser devuelve el ID del usuario activo con número de empleado empID.
func (uc *CirculationUseCase) resolveUser(ctx context.Context, empID string) (string, error) {
	user, err := uc.userRepo.GetByEmpID(ctx, empID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", domain.ErrUserNotFound
	}
	return user.ID, nil
}

func toCirculationResponse(c *entity.Circulation) *dto.CirculationResponse {
	if c == nil {
		return nil
	}
	return &dto.CirculationResponse{
		ID:          c.ID,
		StockID:     c.StockID,
		UserID:      c.UserID,
		Type:        c.Type,
		QtyRelative: c.QtyRelative,
		QtyBefore:   c.QtyBefore,
		UnitPrice:   c.UnitPrice,
		Amount:      c.Amount,
		Remarks:     c.Remarks,
		IsDelegated: c.IsDelegated,
		EvalStatus:  c.EvalStatus,
		EvalUserID:  c.EvalUserID,
		EvalRemarks: c.EvalRemarks,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toStockResponse(s *entity.Stock) *dto.StockResponse {
	return &dto.StockResponse{
		ID:         s.ID,
		ItemID:     s.ItemID,
		UOM:        s.UOM,
		Qty:        s.Qty,
		UnitPrice:  s.UnitPrice,
		CurrencyID: s.CurrencyID,
		AmountMain: s.AmountMain,
		WF:         s.WF,
		UpdatedAt:  s.UpdatedAt,
	}
}
