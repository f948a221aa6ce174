package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonedaLocal is the settlement currency of the office.
const MonedaLocal = "ARS"

// SesionCaja is the daily register snapshot: cash per currency plus the bank
// balances captured when it was opened.
// Only one session can be open at a time; closed sessions are never modified.
type SesionCaja struct {
	ID              uuid.UUID              `json:"id"`
	Fecha           time.Time              `json:"fecha"`
	Monedas         map[string]SaldoMoneda `json:"monedas"`
	SaldosBancarios []SaldoBancario        `json:"saldos_bancarios"`
	Abierta         bool                   `json:"abierta"`
	AbiertaPor      string                 `json:"abierta_por"`
	CerradaPor      string                 `json:"cerrada_por,omitempty"`
	CerradaEn       *time.Time             `json:"cerrada_en,omitempty"`
}

// SaldoMoneda holds the opening and running cash amount of one currency.
type SaldoMoneda struct {
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	MontoActual  decimal.Decimal `json:"monto_actual"`
}

// Diferencia is the movement accumulated since the session was opened.
func (s SaldoMoneda) Diferencia() decimal.Decimal {
	return s.MontoActual.Sub(s.MontoInicial)
}

// Clonar returns a deep copy so callers never share the maps/slices of the
// session owned by the register.
func (s SesionCaja) Clonar() SesionCaja {
	out := s
	out.Monedas = make(map[string]SaldoMoneda, len(s.Monedas))
	for k, v := range s.Monedas {
		out.Monedas[k] = v
	}
	out.SaldosBancarios = append([]SaldoBancario(nil), s.SaldosBancarios...)
	if s.CerradaEn != nil {
		t := *s.CerradaEn
		out.CerradaEn = &t
	}
	return out
}
