package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Decisiones de evaluación.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Outcome resultado exitoso de una evaluación.
type Outcome string

const (
	OutcomeApproved Outcome = entity.EvalStatusApproved
	OutcomeRejected Outcome = entity.EvalStatusRejected
	OutcomeCreated  Outcome = "created"
)

// BatchItem resultado de una fila de una operación masiva: Outcome si tuvo éxito, Err si no.
// Index es la posición de la fila en la entrada.
type BatchItem struct {
	Index   int
	ID      string
	Outcome Outcome
	Err     error
}

// BatchResult resultados de EvaluateBatch o CreateBatch agrupados por resultado y por tipo de error.
type BatchResult struct {
	Items     []BatchItem
	Successes map[Outcome]int
	Failures  map[domain.ErrorKind]int
}

// Evaluate aprueba o rechaza una circulación pendiente.
// Al aprobar se aplica el efecto sobre el stock; al rechazar el stock no cambia.
func (uc *CirculationUseCase) Evaluate(ctx context.Context, actor entity.Actor, id, decision, evalRemarks string) (*dto.CirculationResponse, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, domain.ErrInvalidDecision
	}
	evalRemarks = strings.TrimSpace(evalRemarks)
	if len([]rune(evalRemarks)) > 256 {
		return nil, fmt.Errorf("%w: eval_remarks:max", domain.ErrValidation)
	}

	peek, err := uc.circRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, domain.ErrCircNotFound
	}
	unlock := uc.locker.Lock(ctx, peek.StockID)
	defer unlock()

	var evaluated *entity.Circulation
	var stockQty decimal.Decimal
	err = uc.txRunner.Run(ctx, func(
		circRepo repository.CirculationRepository,
		stockRepo repository.StockRepository,
		currencyRepo repository.CurrencyRepository,
	) error {
		circ, err := circRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if circ == nil {
			return domain.ErrCircNotFound
		}
		if !circ.IsPending() {
			return domain.ErrAlreadyEvaluated
		}
		if !uc.policy.CanEvaluate(actor, circ) {
			return domain.ErrEvalDenied
		}

		now := uc.now()
		if decision == DecisionReject {
			circ.EvalStatus = entity.EvalStatusRejected
			circ.EvalUserID = actor.ID
			circ.EvalRemarks = evalRemarks
			circ.UpdatedAt = now
			if err := circRepo.Update(ctx, circ); err != nil {
				return err
			}
			evaluated = circ
			return nil
		}

		stock, err := stockRepo.GetForUpdate(ctx, circ.StockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrStockNotFound
		}
		qty, before, err := inventory.ApplyApproval(stock.Qty, circ)
		if err != nil {
			return err
		}
		circ.QtyBefore = before
		circ.EvalStatus = entity.EvalStatusApproved
		circ.EvalUserID = actor.ID
		circ.EvalRemarks = evalRemarks
		circ.UpdatedAt = now
		if err := circRepo.Update(ctx, circ); err != nil {
			return err
		}
		if err := uc.restock(ctx, circRepo, stockRepo, currencyRepo, stock, qty, now); err != nil {
			return err
		}
		evaluated = circ
		stockQty = qty
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("circ_id", id).Str("decision", decision).Str("actor_id", actor.ID).Msg("evaluar circulación")
		return nil, err
	}
	ev := uc.log.Info().
		Str("circ_id", evaluated.ID).
		Str("stock_id", evaluated.StockID).
		Str("status", evaluated.EvalStatus).
		Str("actor_id", actor.ID)
	if evaluated.EvalStatus == entity.EvalStatusApproved {
		ev = ev.Str("stock_qty", stockQty.String())
	}
	ev.Msg("circulación evaluada")
	return toCirculationResponse(evaluated), nil
}

// EvaluateBatch evalúa cada circulación de forma independiente: un fallo no bloquea ni revierte las demás.
func (uc *CirculationUseCase) EvaluateBatch(ctx context.Context, actor entity.Actor, ids []string, decision, evalRemarks string) (*BatchResult, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, domain.ErrInvalidDecision
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no hay circulaciones seleccionadas", domain.ErrValidation)
	}

	res := newBatchResult(len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			res.add(BatchItem{Index: i, ID: id, Err: err})
			continue
		}
		out, err := uc.Evaluate(ctx, actor, id, decision, evalRemarks)
		if err != nil {
			res.add(BatchItem{Index: i, ID: id, Err: err})
			continue
		}
		res.add(BatchItem{Index: i, ID: id, Outcome: Outcome(out.EvalStatus)})
	}
	uc.log.Info().
		Int("total", len(ids)).
		Int("approved", res.Successes[OutcomeApproved]).
		Int("rejected", res.Successes[OutcomeRejected]).
		Int("failed", res.Failed()).
		Str("actor_id", actor.ID).
		Msg("evaluación masiva")
	return res, nil
}

func newBatchResult(n int) *BatchResult {
	return &BatchResult{
		Items:     make([]BatchItem, 0, n),
		Successes: make(map[Outcome]int),
		Failures:  make(map[domain.ErrorKind]int),
	}
}

// Failed cantidad de filas que fallaron.
func (r *BatchResult) Failed() int {
	n := 0
	for _, c := range r.Failures {
		n += c
	}
	return n
}

func (r *BatchResult) add(item BatchItem) {
	r.Items = append(r.Items, item)
	if item.Err != nil {
		r.Failures[domain.KindOf(item.Err)]++
		return
	}
	r.Successes[item.Outcome]++
}

// restock fija la nueva cantidad del stock y recalcula amount_main y wf.
func (uc *CirculationUseCase) restock(
	ctx context.Context,
	circRepo repository.CirculationRepository,
	stockRepo repository.StockRepository,
	currencyRepo repository.CurrencyRepository,
	stock *entity.Stock,
	qty decimal.Decimal,
	now time.Time,
) error {
	currency, err := currencyRepo.GetByID(ctx, stock.CurrencyID)
	if err != nil {
		return err
	}
	if currency == nil {
		return domain.ErrCurrencyNotFound
	}
	since := now.AddDate(0, 0, -uc.wfWindowDays)
	withdrawn, err := circRepo.SumApprovedWithdrawals(ctx, stock.ID, since)
	if err != nil {
		return err
	}
	stock.Qty = qty
	stock.AmountMain = inventory.Round(inventory.AmountMain(qty, stock.UnitPrice, stock.CurrencyID, currency.Rate))
	stock.WF = inventory.WeeklyWithdrawal(withdrawn, uc.wfWindowDays)
	stock.UpdatedAt = now
	return stockRepo.Update(ctx, stock)
}
