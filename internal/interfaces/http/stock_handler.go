package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Circulation-api/internal/application/inventory"
)

// StockHandler consulta de stock (solo lectura; el stock cambia vía circulaciones).
type StockHandler struct {
	uc *inventory.CirculationUseCase
}

func NewStockHandler(uc *inventory.CirculationUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetByID godoc
// @Summary      Obtener stock
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "stock id"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocks/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
