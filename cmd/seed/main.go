// seed carga usuarios o stocks iniciales desde una planilla.
//
// Uso: go run ./cmd/seed users|stocks archivo.(xlsx|csv) [latin1]
//
// Columnas usuarios: emp_id, nombre, rol, password
// Columnas stocks:   item_id, uom, qty, unit_price, currency_id
//
// Los .csv usan ';' como separador; con latin1 se decodifican desde ISO-8859-1.
// Los .xlsx se leen de la primera hoja. La primera fila es cabecera.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/Circulation-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Circulation-api/pkg/config"
	"github.com/jhoicas/Circulation-api/pkg/logger"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: seed users|stocks archivo.(xlsx|csv) [latin1]")
		os.Exit(2)
	}
	kind, path := os.Args[1], os.Args[2]
	latin1 := len(os.Args) > 3 && strings.EqualFold(os.Args[3], "latin1")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	rows, err := readRows(path, latin1)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("leer planilla")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	now := time.Now()
	var n int
	switch kind {
	case "users":
		users, err := parseUsers(rows, now)
		if err != nil {
			log.Fatal().Err(err).Msg("usuarios")
		}
		repo := postgres.NewUserRepository(pool)
		for _, u := range users {
			if err := repo.Create(ctx, u); err != nil {
				log.Fatal().Err(err).Str("emp_id", u.EmpID).Msg("crear usuario")
			}
		}
		n = len(users)
	case "stocks":
		stocks, err := parseStocks(rows, now)
		if err != nil {
			log.Fatal().Err(err).Msg("stocks")
		}
		repo := postgres.NewStockRepository(pool)
		currencies := postgres.NewCurrencyRepository(pool)
		for _, s := range stocks {
			cur, err := currencies.GetByID(ctx, s.CurrencyID)
			if err != nil || cur == nil {
				log.Fatal().Err(err).Int64("currency_id", s.CurrencyID).Msg("moneda inexistente")
			}
			fillAmountMain(s, cur.Rate)
			if err := repo.Create(ctx, s); err != nil {
				log.Fatal().Err(err).Str("item_id", s.ItemID).Msg("crear stock")
			}
		}
		n = len(stocks)
	default:
		log.Fatal().Str("kind", kind).Msg("tipo desconocido (users|stocks)")
	}
	log.Info().Str("kind", kind).Int("rows", n).Msg("carga completada")
}
