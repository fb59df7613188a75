package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Circulation-api/pkg/config"
)

func TestLockKey(t *testing.T) {
	assert.Equal(t, "circ:stock:s-1", lockKey("s-1"))
}

// Sin Redis el lock no bloquea: la transacción sigue siendo la garantía.
func TestLock_SinRedisContinua(t *testing.T) {
	client := NewClient(config.RedisConfig{Addr: "127.0.0.1:1"})
	l := NewStockLocker(client, 200*time.Millisecond, zerolog.Nop())
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(ctx, "s-1")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("Lock no debe bloquear cuando Redis no está disponible")
	}
	assert.Error(t, l.Ping(context.Background()))
}
