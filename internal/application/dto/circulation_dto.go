package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCirculationRequest body para POST /api/circulations.
// UserRef es el número de empleado en cuyo nombre se registra (vacío = el propio usuario).
type CreateCirculationRequest struct {
	StockID     string          `json:"stock_id" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=deposit withdrawal capture"`
	QtyRelative decimal.Decimal `json:"qty_relative" validate:"gte=0,lte=100000"`
	Remarks     string          `json:"remarks" validate:"required,max=256"`
	UserRef     string          `json:"user_ref,omitempty" validate:"omitempty,max=32"`
}

// UpdateCirculationRequest body para PUT /api/circulations/:id.
type UpdateCirculationRequest struct {
	QtyRelative decimal.Decimal `json:"qty_relative" validate:"gte=0,lte=100000"`
	Remarks     string          `json:"remarks" validate:"required,max=256"`
	UserRef     string          `json:"user_ref,omitempty" validate:"omitempty,max=32"`
}

// EvaluateRequest body para POST /api/circulations/:id/evaluate.
type EvaluateRequest struct {
	Decision    string `json:"decision" validate:"required,oneof=approve reject"`
	EvalRemarks string `json:"eval_remarks" validate:"max=256"`
}

// BatchEvaluateRequest body para POST /api/circulations/evaluate.
type BatchEvaluateRequest struct {
	IDs         []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Decision    string   `json:"decision" validate:"required,oneof=approve reject"`
	EvalRemarks string   `json:"eval_remarks" validate:"max=256"`
}

// CirculationResponse salida de una circulación.
type CirculationResponse struct {
	ID          string           `json:"id"`
	StockID     string           `json:"stock_id"`
	UserID      string           `json:"user_id"`
	Type        string           `json:"type"`
	QtyRelative decimal.Decimal  `json:"qty_relative"`
	QtyBefore   *decimal.Decimal `json:"qty_before,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Amount      decimal.Decimal  `json:"amount"`
	Remarks     string           `json:"remarks"`
	IsDelegated bool             `json:"is_delegated"`
	EvalStatus  string           `json:"eval_status"`
	EvalUserID  string           `json:"eval_user_id,omitempty"`
	EvalRemarks string           `json:"eval_remarks,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CirculationListResponse listado paginado.
type CirculationListResponse struct {
	Items []CirculationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// CirculationListQuery filtros de GET /api/circulations.
type CirculationListQuery struct {
	StockID  string
	Statuses []string
	Types    []string
	User     string
	Q        string
	From     *time.Time
	To       *time.Time
	Sort     string
	PageRequest
}

// StockResponse salida de un stock.
type StockResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	UOM        string          `json:"uom"`
	Qty        decimal.Decimal `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID int64           `json:"currency_id"`
	AmountMain decimal.Decimal `json:"amount_main"`
	WF         decimal.Decimal `json:"wf"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BulkCirculationRow fila de una creación masiva; el tipo es común a todas.
type BulkCirculationRow struct {
	StockID     string          `json:"stock_id"`
	QtyRelative decimal.Decimal `json:"qty_relative"`
	Remarks     string          `json:"remarks"`
}

// BulkCreateRequest entrada de POST /api/circulations/bulk. Las filas se validan una a una.
type BulkCreateRequest struct {
	Type string               `json:"type" validate:"required,oneof=deposit withdrawal capture"`
	Rows []BulkCirculationRow `json:"rows" validate:"required,min=1,max=100"`
}

// BatchItemResult resultado de una fila dentro de una operación masiva.
type BatchItemResult struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Outcome string `json:"outcome,omitempty"` // approved | rejected | created
	Kind    string `json:"kind,omitempty"`    // tipo de error
	Message string `json:"message"`
}

// BatchResponse conteo agrupado por resultado y por tipo de error.
type BatchResponse struct {
	Successes map[string]int    `json:"successes"`
	Failures  map[string]int    `json:"failures"`
	Items     []BatchItemResult `json:"items"`
}

// CirculationTotalDTO total aprobado por tipo.
type CirculationTotalDTO struct {
	Type   string          `json:"type"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Qty    decimal.Decimal `json:"qty"`
}

// CirculationSummaryResponse resumen de circulaciones aprobadas en un rango.
type CirculationSummaryResponse struct {
	From   time.Time             `json:"from"`
	To     time.Time             `json:"to"`
	Totals []CirculationTotalDTO `json:"totals"`
	Net    decimal.Decimal       `json:"net_amount"` // depósitos − retiros
}
