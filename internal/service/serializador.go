package service

import "context"

// Serializador runs state transitions one at a time. Open, close and settle
// all go through it so the single-open-session and one-row-per-pair rules
// hold with several clients.
type Serializador interface {
	Ejecutar(ctx context.Context, fn func(ctx context.Context) error) error
}

type serializadorLocal struct{ turno chan struct{} }

// NewSerializadorLocal serializes within this process only.
func NewSerializadorLocal() Serializador {
	return &serializadorLocal{turno: make(chan struct{}, 1)}
}

func (s *serializadorLocal) Ejecutar(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case s.turno <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.turno }()
	return fn(ctx)
}
