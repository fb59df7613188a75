package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Circulation-api/internal/application/auth"
	"github.com/jhoicas/Circulation-api/internal/application/dto"
	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/internal/application/policy"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
	"github.com/jhoicas/Circulation-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Circulation-api/internal/interfaces/http"
	"github.com/jhoicas/Circulation-api/internal/testutil/memstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	opID   = "u-op"
	evalID = "u-ev"
)

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	store *memstore.Store
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)

	store := memstore.New()
	store.AddUser(&entity.User{ID: opID, EmpID: "E001", Name: "Ana", PasswordHash: string(hash), Role: entity.RoleOperator, IsActive: true})
	store.AddUser(&entity.User{ID: evalID, EmpID: "E100", Name: "Eva", PasswordHash: string(hash), Role: entity.RoleEvaluator, IsActive: true})
	store.AddStock(&entity.Stock{ID: "s-1", ItemID: "tornillo", UOM: "und", Qty: decimal.NewFromInt(100), UnitPrice: decimal.RequireFromString("2.5"), CurrencyID: 1})

	circUC := inventory.NewCirculationUseCase(store, store.Circulations(), store.Stocks(), store.Users(),
		policy.NewRolePolicy(false),
		inventory.CirculationConfig{Printer: pdf.NewCirculationPrinter("Circulaciones")},
		zerolog.Nop())
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 10, Issuer: testIssuer}, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{AuthUC: authUC, CirculationUC: circUC, JWTSecret: testJWTSecret})
	return &apiClient{t: t, app: app, store: store}
}

func (a *apiClient) do(method, path, authHeader string, body any) (*http.Response, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, out
}

func (a *apiClient) createDeposit(qty string) dto.CirculationResponse {
	a.t.Helper()
	resp, body := a.do(http.MethodPost, "/api/circulations", tokenFor(a.t, opID, entity.RoleOperator), fiber.Map{
		"stock_id": "s-1", "type": "deposit", "qty_relative": qty, "remarks": "compra",
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.CirculationResponse
	require.NoError(a.t, json.Unmarshal(body, &out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DevuelveToken(t *testing.T) {
	api := newAPI(t)
	resp, body := api.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"emp_id": "E100", "password": "clave123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleEvaluator, out.User.Role)

	resp, _ = api.do(http.MethodPost, "/api/auth/login", "", fiber.Map{"emp_id": "E100", "password": "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCirculations_FlujoCompleto(t *testing.T) {
	api := newAPI(t)
	evalTok := tokenFor(t, evalID, entity.RoleEvaluator)
	c := api.createDeposit("20")
	assert.Equal(t, entity.EvalStatusPending, c.EvalStatus)

	resp, body := api.do(http.MethodPost, "/api/circulations/"+c.ID+"/evaluate", evalTok, fiber.Map{"decision": "approve"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = api.do(http.MethodGet, "/api/stocks/s-1", evalTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &stock))
	assert.True(t, stock.Qty.Equal(decimal.NewFromInt(120)))

	resp, body = api.do(http.MethodGet, "/api/circulations/"+c.ID+"/revertable", evalTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"revertable":true}`, string(body))

	resp, _ = api.do(http.MethodPost, "/api/circulations/"+c.ID+"/revert", evalTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, api.store.Stock("s-1").Qty.Equal(decimal.NewFromInt(100)))
}

func TestCirculations_ErroresMapeadosAStatus(t *testing.T) {
	api := newAPI(t)
	opTok := tokenFor(t, opID, entity.RoleOperator)
	evalTok := tokenFor(t, evalID, entity.RoleEvaluator)
	c := api.createDeposit("20")

	// operador no evalúa
	resp, _ := api.do(http.MethodPost, "/api/circulations/"+c.ID+"/evaluate", opTok, fiber.Map{"decision": "approve"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// validación
	resp, body := api.do(http.MethodPost, "/api/circulations", opTok, fiber.Map{"stock_id": "s-1", "type": "transfer", "qty_relative": "1", "remarks": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")

	// no encontrada
	resp, _ = api.do(http.MethodGet, "/api/circulations/no-existe", opTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// conflicto de estado
	resp, _ = api.do(http.MethodPost, "/api/circulations/"+c.ID+"/evaluate", evalTok, fiber.Map{"decision": "reject"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = api.do(http.MethodPut, "/api/circulations/"+c.ID, opTok, fiber.Map{"qty_relative": "5", "remarks": "cambio"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "STATE_CONFLICT")

	// invariante
	w, body := api.do(http.MethodPost, "/api/circulations", opTok, fiber.Map{"stock_id": "s-1", "type": "withdrawal", "qty_relative": "500", "remarks": "x"})
	require.Equal(t, http.StatusCreated, w.StatusCode, string(body))
	var big dto.CirculationResponse
	require.NoError(t, json.Unmarshal(body, &big))
	resp, body = api.do(http.MethodPost, "/api/circulations/"+big.ID+"/evaluate", evalTok, fiber.Map{"decision": "approve"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INVARIANT_VIOLATION")
}

func TestEvaluateBatch_RespuestaAgrupada(t *testing.T) {
	api := newAPI(t)
	evalTok := tokenFor(t, evalID, entity.RoleEvaluator)
	a := api.createDeposit("1")
	b := api.createDeposit("2")
	resp, _ := api.do(http.MethodPost, "/api/circulations/"+a.ID+"/evaluate", evalTok, fiber.Map{"decision": "approve"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(http.MethodPost, "/api/circulations/evaluate", evalTok, fiber.Map{
		"ids": []string{a.ID, b.ID}, "decision": "approve",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Successes["approved"])
	assert.Equal(t, 1, out.Failures["state_conflict"])
	require.Len(t, out.Items, 2)
	assert.False(t, out.Items[0].Success)
	assert.True(t, out.Items[1].Success)

	// operador no accede a la evaluación masiva
	resp, _ = api.do(http.MethodPost, "/api/circulations/evaluate", tokenFor(t, opID, entity.RoleOperator), fiber.Map{
		"ids": []string{b.ID}, "decision": "approve",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateBatch_ResultadoPorFila(t *testing.T) {
	api := newAPI(t)
	opTok := tokenFor(t, opID, entity.RoleOperator)

	resp, body := api.do(http.MethodPost, "/api/circulations/bulk", opTok, fiber.Map{
		"type": "deposit",
		"rows": []fiber.Map{
			{"stock_id": "s-1", "qty_relative": "4", "remarks": "compra 1"},
			{"stock_id": "no-existe", "qty_relative": "1", "remarks": "compra 2"},
			{"stock_id": "s-1", "qty_relative": "0.00001", "remarks": "compra 3"},
			{"stock_id": "s-1", "qty_relative": "6", "remarks": "compra 4"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.BatchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 2, out.Successes["created"])
	assert.Equal(t, 1, out.Failures["not_found"])
	assert.Equal(t, 1, out.Failures["validation"])
	require.Len(t, out.Items, 4)
	assert.Equal(t, 2, out.Items[2].Index)
	assert.False(t, out.Items[2].Success)

	created := api.store.Circulation(out.Items[3].ID)
	require.NotNil(t, created)
	assert.Equal(t, opID, created.UserID)
	assert.Equal(t, entity.EvalStatusPending, created.EvalStatus)

	// tipo inválido rechaza toda la entrada
	resp, _ = api.do(http.MethodPost, "/api/circulations/bulk", opTok, fiber.Map{
		"type": "transfer", "rows": []fiber.Map{{"stock_id": "s-1", "qty_relative": "1", "remarks": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestList_FiltroPorEstado(t *testing.T) {
	api := newAPI(t)
	evalTok := tokenFor(t, evalID, entity.RoleEvaluator)
	a := api.createDeposit("1")
	api.createDeposit("2")
	resp, _ := api.do(http.MethodPost, "/api/circulations/"+a.ID+"/evaluate", evalTok, fiber.Map{"decision": "approve"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(http.MethodGet, "/api/circulations?status=pending&stock_id=s-1", evalTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.CirculationListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Page.Total)

	resp, _ = api.do(http.MethodGet, "/api/circulations?from=ayer", evalTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPrint_DevuelvePDF(t *testing.T) {
	api := newAPI(t)
	c := api.createDeposit("3")
	resp, body := api.do(http.MethodGet, "/api/circulations/print?ids="+c.ID, tokenFor(t, opID, entity.RoleOperator), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestSinToken_Retorna401(t *testing.T) {
	api := newAPI(t)
	resp, _ := api.do(http.MethodGet, "/api/circulations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
