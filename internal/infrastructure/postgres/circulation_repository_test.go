package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Circulation-api/internal/domain/repository"
)

func TestCircWhere_SinFiltros(t *testing.T) {
	where, args := circWhere(repository.CirculationFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestCircWhere_NumeraArgumentos(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := circWhere(repository.CirculationFilter{
		StockID:  "6f1c1f3e-2c1b-4e8e-9a57-0c8a3c6d2b11",
		Statuses: []string{"pending"},
		User:     "ana",
		From:     &from,
	})
	assert.Equal(t,
		" WHERE c.stock_id = $1 AND c.eval_status = ANY($2) AND (u.name ILIKE $3 OR u.emp_id ILIKE $3) AND c.updated_at >= $4",
		where)
	assert.Len(t, args, 4)
	assert.Equal(t, "%ana%", args[2])
}

func TestCircWhere_StockIDInvalido(t *testing.T) {
	where, args := circWhere(repository.CirculationFilter{StockID: "no-uuid"})
	assert.Equal(t, " WHERE FALSE", where)
	assert.Empty(t, args)
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("6f1c1f3e-2c1b-4e8e-9a57-0c8a3c6d2b11"))
	assert.False(t, validID("fantasma"))
}
