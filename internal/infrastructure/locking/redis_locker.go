// Package locking implementa el bloqueo por llave que serializa las operaciones
// sobre una misma recepción: Redis para varias instancias, memoria para una sola.
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/internal/domain"
	"github.com/jhoicas/Recepcion-api/pkg/config"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

var _ reception.Locker = (*RedisLocker)(nil)

const defaultRetryInterval = 50 * time.Millisecond

// RedisLocker bloqueo distribuido con bsm/redislock. Reintenta con espera lineal
// hasta obtener el bloqueo o hasta que venza el contexto del llamador.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// NewRedisClient abre el cliente y verifica la conexión con un ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker ttl es la vida máxima del bloqueo si el proceso muere sin liberarlo;
// debe superar el timeout de operación.
func NewRedisLocker(rdb redislock.RedisClient, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  defaultRetryInterval,
		log:    log.Component("redis-locker"),
	}
}

// Lock obtiene el bloqueo de key. Bloqueo ocupado hasta el plazo del contexto
// devuelve domain.RetryableError.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		l.log.Debug().Str("key", key).Msg("bloqueo ocupado")
		return nil, &domain.RetryableError{Op: "bloqueo " + key, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}

	return func() {
		// El contexto del llamador puede estar vencido; liberar igual.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
