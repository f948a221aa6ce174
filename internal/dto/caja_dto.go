package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AbrirCajaRequest carries the amounts entered by the operator. Currencies and
// bank pairs that are omitted open at zero.
type AbrirCajaRequest struct {
	Efectivo map[string]decimal.Decimal `json:"efectivo"`
	Bancos   []SaldoBancarioRequest     `json:"bancos" validate:"dive"`
}

type SaldoBancarioRequest struct {
	BancoID string          `json:"banco_id" validate:"required"`
	Moneda  string          `json:"moneda"   validate:"required,min=2,max=10"`
	Monto   decimal.Decimal `json:"monto"`
}

// FijarSaldoRequest overwrites one ledger row.
type FijarSaldoRequest struct {
	Monto decimal.Decimal `json:"monto"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaldoMonedaResponse struct {
	Moneda       string          `json:"moneda"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	MontoActual  decimal.Decimal `json:"monto_actual"`
	Diferencia   decimal.Decimal `json:"diferencia"`
}

type SaldoBancarioResponse struct {
	BancoID string          `json:"banco_id"`
	Moneda  string          `json:"moneda"`
	Monto   decimal.Decimal `json:"monto"`
}

type CajaResponse struct {
	ID              string                  `json:"id"`
	Fecha           time.Time               `json:"fecha"`
	Abierta         bool                    `json:"abierta"`
	AbiertaPor      string                  `json:"abierta_por"`
	CerradaPor      string                  `json:"cerrada_por,omitempty"`
	CerradaEn       *time.Time              `json:"cerrada_en,omitempty"`
	Monedas         []SaldoMonedaResponse   `json:"monedas"`
	SaldosBancarios []SaldoBancarioResponse `json:"saldos_bancarios"`
}

type EstadoCajaResponse struct {
	Estado string        `json:"estado"` // abierta | cerrada
	Caja   *CajaResponse `json:"caja"`
}
