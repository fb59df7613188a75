// Package redis bloqueo distribuido por stock sobre Redis (bsm/redislock).
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Circulation-api/internal/application/inventory"
	"github.com/jhoicas/Circulation-api/pkg/config"
)

var _ inventory.StockLocker = (*StockLocker)(nil)

// StockLocker serializa evaluaciones y reversiones del mismo stock entre réplicas.
// Es de mejor esfuerzo: si Redis no responde o el lock no se obtiene, se continúa
// y el SELECT FOR UPDATE de la transacción sigue serializando.
type StockLocker struct {
	client *goredis.Client
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewClient crea el cliente go-redis desde la configuración.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    20,
		DialTimeout: 2 * time.Second,
	})
}

// NewStockLocker construye el locker. ttl acota cuánto puede retener un proceso caído el lock.
func NewStockLocker(client *goredis.Client, ttl time.Duration, log zerolog.Logger) *StockLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &StockLocker{
		client: client,
		locker: redislock.New(client),
		ttl:    ttl,
		wait:   ttl / 2,
		log:    log.With().Str("component", "redis_lock").Logger(),
	}
}

// Ping verifica la conexión.
func (l *StockLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Lock obtiene el lock del stock esperando hasta wait; siempre devuelve una función de liberación.
func (l *StockLocker) Lock(ctx context.Context, stockID string) func() {
	key := lockKey(stockID)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(l.wait/(50*time.Millisecond))),
	}
	lock, err := l.locker.Obtain(ctx, key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn().Str("stock_id", stockID).Msg("lock no obtenido; se continúa sin lock de redis")
		return func() {}
	}
	if err != nil {
		l.log.Warn().Err(err).Str("stock_id", stockID).Msg("redis no disponible; se continúa sin lock de redis")
		return func() {}
	}
	return func() {
		// ctx puede estar cancelado al terminar la petición
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("stock_id", stockID).Msg("liberar lock")
		}
	}
}

// Close cierra el cliente.
func (l *StockLocker) Close() error {
	return l.client.Close()
}

func lockKey(stockID string) string {
	return fmt.Sprintf("circ:stock:%s", stockID)
}
