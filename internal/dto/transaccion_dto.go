package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// TransaccionFilter is bound from query string of GET /v1/transacciones.
type TransaccionFilter struct {
	Periodo  string `form:"periodo,default=todos" validate:"oneof=todos dia semana mes custom"`
	Desde    string `form:"desde"` // YYYY-MM-DD, only with periodo=custom
	Hasta    string `form:"hasta"` // YYYY-MM-DD inclusive, only with periodo=custom
	Busqueda string `form:"q"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type TransaccionListResponse struct {
	Data  []TransaccionResponse `json:"data"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DeduccionesRequest struct {
	IIBB               bool             `json:"iibb"`
	DebCred            bool             `json:"deb_cred"`
	Copter             bool             `json:"copter"`
	Personalizada      bool             `json:"personalizada"`
	ValorPersonalizado *decimal.Decimal `json:"valor_personalizado"`
}

type CrearTransaccionRequest struct {
	ClienteID       string              `json:"cliente_id"       validate:"required"`
	TipoOperacion   string              `json:"tipo_operacion"   validate:"required"`
	OperacionMoneda string              `json:"operacion_moneda" validate:"required,oneof=ARS_IN ARS_OUT USDT_BUY USDT_SELL USDT_IN USDT_OUT USD_IN USD_OUT USD_BUY USD_SELL"`
	Monto           decimal.Decimal     `json:"monto"            validate:"required,gt=0"`
	Cotizacion      *decimal.Decimal    `json:"cotizacion"`
	BancoID         string              `json:"banco_id"`
	Deducciones     *DeduccionesRequest `json:"deducciones"`
	Descripcion     string              `json:"descripcion"      validate:"max=500"`
	AdjuntoURL      string              `json:"adjunto_url"      validate:"omitempty,url"`
	AdjuntoNombre   string              `json:"adjunto_nombre"   validate:"max=255"`
	// Fecha defaults to the server time when omitted.
	Fecha *time.Time `json:"fecha"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransaccionResponse struct {
	ID              string              `json:"id"`
	ClienteID       string              `json:"cliente_id"`
	ClienteNombre   string              `json:"cliente_nombre,omitempty"`
	OperadorID      string              `json:"operador_id"`
	TipoOperacion   string              `json:"tipo_operacion"`
	OperacionMoneda string              `json:"operacion_moneda"`
	Monto           decimal.Decimal     `json:"monto"`
	Cotizacion      *decimal.Decimal    `json:"cotizacion,omitempty"`
	MontoCalculado  *decimal.Decimal    `json:"monto_calculado,omitempty"`
	MontoNeto       *decimal.Decimal    `json:"monto_neto,omitempty"`
	Deducciones     *DeduccionesRequest `json:"deducciones,omitempty"`
	BancoID         *string             `json:"banco_id,omitempty"`
	Fecha           time.Time           `json:"fecha"`
	Descripcion     string              `json:"descripcion"`
	AdjuntoURL      string              `json:"adjunto_url,omitempty"`
	AdjuntoNombre   string              `json:"adjunto_nombre,omitempty"`
}

type MovimientoResponse struct {
	Destino  string          `json:"destino"`
	BancoID  string          `json:"banco_id,omitempty"`
	Moneda   string          `json:"moneda"`
	Delta    decimal.Decimal `json:"delta"`
	Aplicado bool            `json:"aplicado"`
}

type RegistrarTransaccionResponse struct {
	Transaccion TransaccionResponse  `json:"transaccion"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}

// CalculoResponse previews the derived amounts without settling.
type CalculoResponse struct {
	OperacionMoneda       string           `json:"operacion_moneda"`
	Monto                 decimal.Decimal  `json:"monto"`
	PorcentajeDeducciones decimal.Decimal  `json:"porcentaje_deducciones"`
	MontoNeto             *decimal.Decimal `json:"monto_neto,omitempty"`
	MontoCalculado        *decimal.Decimal `json:"monto_calculado,omitempty"`
}

type ResumenResponse struct {
	VolumenUSDT       decimal.Decimal `json:"volumen_usdt"`
	VolumenOtros      decimal.Decimal `json:"volumen_otros"`
	Cantidad          int             `json:"cantidad"`
	ClientesDistintos int             `json:"clientes_distintos"`
}
