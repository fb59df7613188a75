package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain"
)

// CirculationHandler maneja las peticiones HTTP del ledger de circulaciones (protegido).
type CirculationHandler struct {
	uc *inventory.CirculationUseCase
}

// NewCirculationHandler construye el handler.
func NewCirculationHandler(uc *inventory.CirculationUseCase) *CirculationHandler {
	return &CirculationHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar circulación (queda pendiente)
// @Tags         circulations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCirculationRequest  true  "stock_id, type, qty_relative, remarks, user_ref"
// @Success      201   {object}  dto.CirculationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/circulations [post]
func (h *CirculationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCirculationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar circulación pendiente
// @Tags         circulations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "circulation id"
// @Param        body  body  dto.UpdateCirculationRequest  true  "qty_relative, remarks, user_ref"
// @Success      200   {object}  dto.CirculationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/circulations/{id} [put]
func (h *CirculationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCirculationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener circulación
// @Tags         circulations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "circulation id"
// @Success      200  {object}  dto.CirculationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/circulations/{id} [get]
func (h *CirculationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar circulaciones
// @Tags         circulations
// @Security     Bearer
// @Produce      json
// @Param        stock_id  query  string  false  "stock"
// @Param        status    query  string  false  "pending,approved,rejected"
// @Param        type      query  string  false  "deposit,withdrawal,capture"
// @Param        user      query  string  false  "nombre o número de empleado"
// @Param        q         query  string  false  "texto en observaciones"
// @Param        from      query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        to        query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        sort      query  string  false  "updated|created|amount_low|amount_high|qty_low|qty_high"
// @Param        limit     query  int     false  "límite (máx 100)"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {object}  dto.CirculationListResponse
// @Router       /api/circulations [get]
func (h *CirculationHandler) List(c *fiber.Ctx) error {
	q := dto.CirculationListQuery{
		StockID:  c.Query("stock_id"),
		Statuses: splitList(c.Query("status")),
		Types:    splitList(c.Query("type")),
		User:     c.Query("user"),
		Q:        c.Query("q"),
		Sort:     c.Query("sort"),
		PageRequest: dto.PageRequest{
			Limit:  c.QueryInt("limit", 20),
			Offset: c.QueryInt("offset", 0),
		},
	}
	var err error
	if q.From, err = parseDate(c.Query("from"), false); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	if q.To, err = parseDate(c.Query("to"), true); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Evaluate godoc
// @Summary      Aprobar o rechazar una circulación pendiente
// @Tags         circulations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "circulation id"
// @Param        body  body  dto.EvaluateRequest  true  "decision (approve|reject), eval_remarks"
// @Success      200   {object}  dto.CirculationResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/circulations/{id}/evaluate [post]
func (h *CirculationHandler) Evaluate(c *fiber.Ctx) error {
	var in dto.EvaluateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Evaluate(c.UserContext(), GetActor(c), c.Params("id"), in.Decision, in.EvalRemarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EvaluateBatch godoc
// @Summary      Evaluación masiva
// @Description  Cada circulación se evalúa por separado; los fallos se agrupan por tipo de error.
// @Tags         circulations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchEvaluateRequest  true  "ids, decision, eval_remarks"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/circulations/evaluate [post]
func (h *CirculationHandler) EvaluateBatch(c *fiber.Ctx) error {
	var in dto.BatchEvaluateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.EvaluateBatch(c.UserContext(), GetActor(c), in.IDs, in.Decision, in.EvalRemarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(res))
}

// CreateBatch godoc
// @Summary      Creación masiva de circulaciones
// @Description  Todas las filas comparten el tipo y quedan a nombre del usuario autenticado.
// @Description  Cada fila se crea por separado; los fallos se agrupan por tipo de error.
// @Tags         circulations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCreateRequest  true  "type, rows (máx. 100)"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/circulations/bulk [post]
func (h *CirculationHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.BulkCreateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.CreateBatch(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(res))
}

func toBatchResponse(res *inventory.BatchResult) dto.BatchResponse {
	out := dto.BatchResponse{
		Successes: make(map[string]int, len(res.Successes)),
		Failures:  make(map[string]int, len(res.Failures)),
		Items:     make([]dto.BatchItemResult, 0, len(res.Items)),
	}
	for k, n := range res.Successes {
		out.Successes[string(k)] = n
	}
	for k, n := range res.Failures {
		out.Failures[string(k)] = n
	}
	for _, it := range res.Items {
		item := dto.BatchItemResult{Index: it.Index, ID: it.ID, Success: it.Err == nil, Outcome: string(it.Outcome)}
		if it.Err != nil {
			item.Kind = string(domain.KindOf(it.Err))
			item.Message = it.Err.Error()
		} else {
			item.Message = "ok"
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// Revertable godoc
// @Summary      Indica si la circulación puede revertirse
// @Tags         circulations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "circulation id"
// @Success      200  {object}  map[string]bool
// @Router       /api/circulations/{id}/revertable [get]
func (h *CirculationHandler) Revertable(c *fiber.Ctx) error {
	ok, err := h.uc.CanRevert(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"revertable": ok})
}

// Revert godoc
// @Summary      Revertir la última circulación aprobada de un stock
// @Tags         circulations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "circulation id"
// @Success      200  {object}  dto.CirculationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/circulations/{id}/revert [post]
func (h *CirculationHandler) Revert(c *fiber.Ctx) error {
	out, err := h.uc.Revert(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Totales de circulaciones aprobadas por tipo
// @Tags         circulations
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "inicio (por defecto primer día del mes)"
// @Param        to    query  string  false  "fin (por defecto ahora)"
// @Success      200  {object}  dto.CirculationSummaryResponse
// @Router       /api/circulations/summary [get]
func (h *CirculationHandler) Summary(c *fiber.Ctx) error {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if f, err := parseDate(c.Query("from"), false); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	} else if f != nil {
		from = *f
	}
	if t, err := parseDate(c.Query("to"), true); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	} else if t != nil {
		to = *t
	}
	out, err := h.uc.Summary(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Print godoc
// @Summary      PDF con los comprobantes de las circulaciones indicadas
// @Tags         circulations
// @Security     Bearer
// @Produce      application/pdf
// @Param        ids  query  string  true  "ids separados por coma"
// @Success      200
// @Router       /api/circulations/print [get]
func (h *CirculationHandler) Print(c *fiber.Ctx) error {
	pdf, err := h.uc.Print(c.UserContext(), splitList(c.Query("ids")))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="circulaciones.pdf"`)
	return c.Send(pdf)
}

// splitList "a, b,,c" → [a b c].
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDate acepta RFC3339 o YYYY-MM-DD; con endOfDay una fecha sin hora cubre todo el día.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
