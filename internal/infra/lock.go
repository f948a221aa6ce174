package infra

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"casacambio/internal/service"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	lockKeyCaja    = "lock:casacambio:caja"
	generacionKey  = "casacambio:generacion"
	lockTries      = 40
	lockRetryDelay = 100 * time.Millisecond
)

// SerializadorRedis serializes register mutations across replicas with a
// redsync mutex. Each replica keeps the generation it last observed: when
// another replica has written since, recargar runs before the mutation so it
// applies to fresh state.
type SerializadorRedis struct {
	local    service.Serializador
	rdb      *redis.Client
	rs       *redsync.Redsync
	expiry   time.Duration
	recargar func(ctx context.Context) error
	conocida atomic.Int64
}

var _ service.Serializador = (*SerializadorRedis)(nil)

// NewSerializadorRedis builds the distributed serializer. recargar may be nil.
func NewSerializadorRedis(rdb *redis.Client, expiry time.Duration, recargar func(ctx context.Context) error) *SerializadorRedis {
	return &SerializadorRedis{
		local:    service.NewSerializadorLocal(),
		rdb:      rdb,
		rs:       redsync.New(goredis.NewPool(rdb)),
		expiry:   expiry,
		recargar: recargar,
	}
}

// Ejecutar runs fn holding both the in-process turn and the redis lock.
func (s *SerializadorRedis) Ejecutar(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.local.Ejecutar(ctx, func(ctx context.Context) error {
		mutex := s.rs.NewMutex(lockKeyCaja,
			redsync.WithExpiry(s.expiry),
			redsync.WithTries(lockTries),
			redsync.WithRetryDelay(lockRetryDelay),
		)
		if err := mutex.LockContext(ctx); err != nil {
			return fmt.Errorf("adquirir lock %s: %w", lockKeyCaja, err)
		}
		defer func() {
			if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
				log.Error().Err(err).Bool("ok", ok).Str("lock", lockKeyCaja).Msg("no se pudo liberar el lock")
			}
		}()

		if err := s.sincronizar(ctx); err != nil {
			return err
		}
		if err := fn(ctx); err != nil {
			return err
		}
		gen, err := s.rdb.Incr(ctx, generacionKey).Result()
		if err != nil {
			// The mutation already happened; other replicas reload on their next
			// successful increment.
			log.Warn().Err(err).Msg("no se pudo incrementar la generación")
			return nil
		}
		s.conocida.Store(gen)
		return nil
	})
}

func (s *SerializadorRedis) sincronizar(ctx context.Context) error {
	gen, err := s.rdb.Get(ctx, generacionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("leer generación: %w", err)
	}
	if gen == s.conocida.Load() {
		return nil
	}
	if s.recargar != nil {
		log.Info().Int64("generacion", gen).Msg("estado modificado por otra réplica, recargando")
		if err := s.recargar(ctx); err != nil {
			return fmt.Errorf("recargar estado: %w", err)
		}
	}
	s.conocida.Store(gen)
	return nil
}
