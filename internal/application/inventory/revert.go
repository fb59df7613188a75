package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/domain"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/domain/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

// CanRevert indica si la circulación puede volver a pendiente: debe estar aprobada, el actor debe
// poder evaluarla y debe ser la última aprobada de su stock.
func (uc *CirculationUseCase) CanRevert(ctx context.Context, actor entity.Actor, id string) (bool, error) {
	circ, err := uc.circRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if circ == nil {
		return false, domain.ErrCircNotFound
	}
	err = uc.checkRevertable(ctx, uc.circRepo, actor, circ)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrStateConflict) || errors.Is(err, domain.ErrForbidden) {
		return false, nil
	}
	return false, err
}

// Revert deshace el efecto de una circulación aprobada sobre el stock y la deja pendiente.
// Solo la última aprobada de un stock es reversible: revertir una anterior desincronizaría qty.
func (uc *CirculationUseCase) Revert(ctx context.Context, actor entity.Actor, id string) (*dto.CirculationResponse, error) {
	peek, err := uc.circRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if peek == nil {
		return nil, domain.ErrCircNotFound
	}
	unlock := uc.locker.Lock(ctx, peek.StockID)
	defer unlock()

	var reverted *entity.Circulation
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
		// bloquear el stock antes de consultar la última aprobada
		stock, err := stockRepo.GetForUpdate(ctx, circ.StockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.ErrStockNotFound
		}
		if err := uc.checkRevertable(ctx, circRepo, actor, circ); err != nil {
			return err
		}
		qty, err := inventory.RevertQty(stock.Qty, circ)
		if err != nil {
			return err
		}

		now := uc.now()
		circ.EvalStatus = entity.EvalStatusPending
		circ.EvalUserID = ""
		circ.EvalRemarks = ""
		circ.QtyBefore = nil
		circ.UpdatedAt = now
		if err := circRepo.Update(ctx, circ); err != nil {
			return err
		}
		if err := uc.restock(ctx, circRepo, stockRepo, currencyRepo, stock, qty, now); err != nil {
			return err
		}
		reverted = circ
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("circ_id", id).Str("actor_id", actor.ID).Msg("revertir circulación")
		return nil, err
	}
	uc.log.Info().
		Str("circ_id", reverted.ID).
		Str("stock_id", reverted.StockID).
		Str("actor_id", actor.ID).
		Msg("circulación revertida a pendiente")
	return toCirculationResponse(reverted), nil
}

func (uc *CirculationUseCase) checkRevertable(ctx context.Context, circRepo repository.CirculationRepository, actor entity.Actor, circ *entity.Circulation) error {
	if circ.EvalStatus != entity.EvalStatusApproved || !inventory.CanTransition(circ.EvalStatus, entity.EvalStatusPending) {
		return domain.ErrNotRevertable
	}
	if !uc.policy.CanEvaluate(actor, circ) {
		return domain.ErrEvalDenied
	}
	if circ.Type == entity.CircTypeCapture && circ.QtyBefore == nil {
		return domain.ErrNotRevertable
	}
	latest, err := circRepo.LatestApproved(ctx, circ.StockID)
	if err != nil {
		return err
	}
	if latest == nil || latest.ID != circ.ID {
		return domain.ErrNotRevertable
	}
	return nil
}
