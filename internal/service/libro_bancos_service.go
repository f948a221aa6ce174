package service

import (
	"context"
	"sync"

	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/shopspring/decimal"
)

// LibroBancos is the balance ledger capability consumed by the register and
// the settlement engine. Rows are keyed by (bancoID, moneda).
type LibroBancos interface {
	// FijarSaldo replaces the row amount, creating the row if absent.
	FijarSaldo(ctx context.Context, bancoID, moneda string, monto decimal.Decimal)
	// AplicarDelta adds delta to the row, creating it at delta if absent.
	AplicarDelta(ctx context.Context, bancoID, moneda string, delta decimal.Decimal)
	// ObtenerSaldo returns the row amount or zero when there is no row.
	ObtenerSaldo(bancoID, moneda string) decimal.Decimal
	Listar() []model.SaldoBancario
}

type LibroBancosService interface {
	LibroBancos
	Reiniciar()
	Cargar(ctx context.Context) error
}

type libroBancosService struct {
	mu      sync.RWMutex
	filas   []model.SaldoBancario
	almacen *repository.Almacen[[]model.SaldoBancario]
}

// NewLibroBancosService builds an empty ledger. almacen may be nil.
func NewLibroBancosService(almacen *repository.Almacen[[]model.SaldoBancario]) LibroBancosService {
	return &libroBancosService{almacen: almacen}
}

func (s *libroBancosService) Reiniciar() {
	s.mu.Lock()
	s.filas = nil
	s.mu.Unlock()
}

func (s *libroBancosService) Cargar(ctx context.Context) error {
	filas, ok, err := cargar(ctx, s.almacen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.filas = nil
		return nil
	}
	s.filas = filas
	return nil
}

func (s *libroBancosService) FijarSaldo(ctx context.Context, bancoID, moneda string, monto decimal.Decimal) {
	s.mu.Lock()
	if i := s.indice(bancoID, moneda); i >= 0 {
		s.filas[i].Monto = monto
	} else {
		s.filas = append(s.filas, model.SaldoBancario{BancoID: bancoID, Moneda: moneda, Monto: monto})
	}
	snap := s.copia()
	s.mu.Unlock()
	persistir(ctx, s.almacen, snap)
}

func (s *libroBancosService) AplicarDelta(ctx context.Context, bancoID, moneda string, delta decimal.Decimal) {
	s.mu.Lock()
	if i := s.indice(bancoID, moneda); i >= 0 {
		s.filas[i].Monto = s.filas[i].Monto.Add(delta)
	} else {
		s.filas = append(s.filas, model.SaldoBancario{BancoID: bancoID, Moneda: moneda, Monto: delta})
	}
	snap := s.copia()
	s.mu.Unlock()
	persistir(ctx, s.almacen, snap)
}

func (s *libroBancosService) ObtenerSaldo(bancoID, moneda string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indice(bancoID, moneda); i >= 0 {
		return s.filas[i].Monto
	}
	return decimal.Zero
}

func (s *libroBancosService) Listar() []model.SaldoBancario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copia()
}

func (s *libroBancosService) indice(bancoID, moneda string) int {
	for i, f := range s.filas {
		if f.BancoID == bancoID && f.Moneda == moneda {
			return i
		}
	}
	return -1
}

func (s *libroBancosService) copia() []model.SaldoBancario {
	return append([]model.SaldoBancario{}, s.filas...)
}
