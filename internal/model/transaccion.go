package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaccion is an immutable history record of a settled operation.
// Cotizacion, MontoCalculado, MontoNeto, Deducciones and BancoID are optional
// and only present for the operation families that use them.
type Transaccion struct {
	ID              uuid.UUID        `json:"id"`
	ClienteID       string           `json:"cliente_id"`
	OperadorID      string           `json:"operador_id"`
	TipoOperacion   string           `json:"tipo_operacion"`
	OperacionMoneda CodigoOperacion  `json:"operacion_moneda"`
	Monto           decimal.Decimal  `json:"monto"`
	Cotizacion      *decimal.Decimal `json:"cotizacion,omitempty"`
	MontoCalculado  *decimal.Decimal `json:"monto_calculado,omitempty"`
	MontoNeto       *decimal.Decimal `json:"monto_neto,omitempty"`
	Deducciones     *Deducciones     `json:"deducciones,omitempty"`
	BancoID         *string          `json:"banco_id,omitempty"`
	Fecha           time.Time        `json:"fecha"`
	Descripcion     string           `json:"descripcion"`
	AdjuntoURL      string           `json:"adjunto_url,omitempty"`
	AdjuntoNombre   string           `json:"adjunto_nombre,omitempty"`
}

// Deducciones are the tax flags applied to an operation amount.
type Deducciones struct {
	IIBB               bool             `json:"iibb"`
	DebCred            bool             `json:"deb_cred"`
	Copter             bool             `json:"copter"`
	Personalizada      bool             `json:"personalizada"`
	ValorPersonalizado *decimal.Decimal `json:"valor_personalizado,omitempty"`
}

// Alguna reports whether at least one deduction is enabled. Safe on nil.
func (d *Deducciones) Alguna() bool {
	if d == nil {
		return false
	}
	return d.IIBB || d.DebCred || d.Copter || d.Personalizada
}

// Operacion rebuilds the tagged variant from the flat record.
func (t Transaccion) Operacion() (Operacion, error) {
	p := ParametrosOperacion{Cotizacion: t.Cotizacion, Deducciones: t.Deducciones}
	if t.BancoID != nil {
		p.BancoID = *t.BancoID
	}
	return NuevaOperacion(t.OperacionMoneda, p)
}

// MontoEfectivo is the amount used for volume statistics: the converted
// amount when present, otherwise the tendered one.
func (t Transaccion) MontoEfectivo() decimal.Decimal {
	if t.MontoCalculado != nil {
		return *t.MontoCalculado
	}
	return t.Monto
}
