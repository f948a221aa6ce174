package service

import (
	"context"

	"casacambio/internal/repository"

	"github.com/rs/zerolog/log"
)

// persistir writes v through the store after a state transition. Failures are
// logged and swallowed: in-memory state stays authoritative until the next
// successful write.
func persistir[T any](ctx context.Context, a *repository.Almacen[T], v T) {
	if a == nil {
		return
	}
	if err := a.Guardar(context.WithoutCancel(ctx), v); err != nil {
		log.Error().Err(err).Str("clave", a.Clave()).Msg("no se pudo persistir el almacén")
	}
}

// cargar reads the store; ok=false means the caller must apply its defaults.
func cargar[T any](ctx context.Context, a *repository.Almacen[T]) (T, bool, error) {
	var zero T
	if a == nil {
		return zero, false, nil
	}
	return a.Cargar(ctx)
}
