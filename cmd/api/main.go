package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Circulation-api/internal/application/auth"
	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/internal/application/policy"
	infrapdf "github.com/jhoicas/Circulation-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Circulation-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Circulation-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Circulation-api/internal/interfaces/http"
	"github.com/jhoicas/Circulation-api/pkg/config"
	"github.com/jhoicas/Circulation-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	circCfg := inventory.CirculationConfig{
		WFWindowDays: cfg.Ledger.WFWindowDays,
		Printer:      infrapdf.NewCirculationPrinter(cfg.App.Name + " · circulaciones"),
	}

	// Redis es opcional: sin él, las transacciones con FOR UPDATE serializan solas.
	if cfg.Redis.Enabled() {
		locker := infraredis.NewStockLocker(infraredis.NewClient(cfg.Redis), cfg.Redis.LockTTL, log.Zerolog())
		defer locker.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := locker.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; el lock por stock será omitido hasta que responda")
		}
		cancel()
		circCfg.Locker = locker
	}

	userRepo := postgres.NewUserRepository(pool)
	circulationUC := inventory.NewCirculationUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewCirculationRepository(pool),
		postgres.NewStockRepository(pool),
		userRepo,
		policy.NewRolePolicy(cfg.Ledger.AllowSelfEval),
		circCfg,
		log.Zerolog(),
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Zerolog())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // impresión de PDFs grandes
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs (solo si existe el archivo)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Circulation API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CirculationUC: circulationUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
