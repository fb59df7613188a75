package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Circulation-api/internal/application/auth"
	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CirculationUC *inventory.CirculationUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleEvaluator, entity.RoleOperator)
	evaluators := RequireRole(entity.RoleAdmin, entity.RoleEvaluator)

	stockHandler := NewStockHandler(deps.CirculationUC)
	protected.Get("/stocks/:id", anyRole, stockHandler.GetByID)

	circs := protected.Group("/circulations")
	h := NewCirculationHandler(deps.CirculationUC)
	// rutas estáticas antes de /:id
	circs.Get("/", anyRole, h.List)
	circs.Post("/", anyRole, h.Create)
	circs.Get("/summary", anyRole, h.Summary)
	circs.Get("/print", anyRole, h.Print)
	circs.Post("/bulk", anyRole, h.CreateBatch)
	circs.Post("/evaluate", evaluators, h.EvaluateBatch)
	circs.Get("/:id", anyRole, h.GetByID)
	circs.Put("/:id", anyRole, h.Update)
	circs.Post("/:id/evaluate", evaluators, h.Evaluate)
	circs.Get("/:id/revertable", anyRole, h.Revertable)
	circs.Post("/:id/revert", evaluators, h.Revert)
}
