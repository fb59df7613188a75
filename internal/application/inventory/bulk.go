package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// CreateBatch registra varias circulaciones del mismo tipo a nombre del actor.
// Cada fila se crea en su propia transacción: una fila inválida no impide las demás.
func (uc *CirculationUseCase) CreateBatch(ctx context.Context, actor entity.Actor, in dto.BulkCreateRequest) (*BatchResult, error) {
	in.Type = strings.TrimSpace(in.Type)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	res := newBatchResult(len(in.Rows))
	for i, row := range in.Rows {
		if err := ctx.Err(); err != nil {
			res.add(BatchItem{Index: i, Err: err})
			continue
		}
		out, err := uc.Create(ctx, actor, dto.CreateCirculationRequest{
			StockID:     row.StockID,
			Type:        in.Type,
			QtyRelative: row.QtyRelative,
			Remarks:     row.Remarks,
		})
		if err != nil {
			res.add(BatchItem{Index: i, Err: err})
			continue
		}
		res.add(BatchItem{Index: i, ID: out.ID, Outcome: OutcomeCreated})
	}
	uc.log.Info().
		Str("type", in.Type).
		Int("total", len(in.Rows)).
		Int("created", res.Successes[OutcomeCreated]).
		Int("failed", res.Failed()).
		Str("actor_id", actor.ID).
		Msg("creación masiva")
	return res, nil
}
