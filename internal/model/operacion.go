package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CodigoOperacion is the wire-level code of a currency operation. The set is
// closed: any value outside the constants below is rejected by ParseCodigo.
type CodigoOperacion string

const (
	OpIngresoARS  CodigoOperacion = "ARS_IN"
	OpEgresoARS   CodigoOperacion = "ARS_OUT"
	OpCompraUSDT  CodigoOperacion = "USDT_BUY"
	OpVentaUSDT   CodigoOperacion = "USDT_SELL"
	OpIngresoUSDT CodigoOperacion = "USDT_IN"
	OpEgresoUSDT  CodigoOperacion = "USDT_OUT"
	OpIngresoUSD  CodigoOperacion = "USD_IN"
	OpEgresoUSD   CodigoOperacion = "USD_OUT"
	OpCompraUSD   CodigoOperacion = "USD_BUY"
	OpVentaUSD    CodigoOperacion = "USD_SELL"
)

// CodigosOperacion lists every valid code in display order.
var CodigosOperacion = []CodigoOperacion{
	OpIngresoARS, OpEgresoARS,
	OpCompraUSDT, OpVentaUSDT, OpIngresoUSDT, OpEgresoUSDT,
	OpIngresoUSD, OpEgresoUSD, OpCompraUSD, OpVentaUSD,
}

// Activo is a foreign unit traded against the local currency.
type Activo string

const (
	ActivoUSD  Activo = "USD"
	ActivoUSDT Activo = "USDT"
)

var (
	ErrCodigoOperacionInvalido = errors.New("código de operación inválido")
	ErrCotizacionRequerida     = errors.New("la cotización es requerida para compras y ventas")
	ErrCotizacionNoPermitida   = errors.New("la operación no admite cotización")
	ErrBancoNoPermitido        = errors.New("la operación no admite banco")
	ErrDeduccionesNoPermitidas = errors.New("la operación no admite deducciones")
)

// ParseCodigo validates a raw operation code.
func ParseCodigo(s string) (CodigoOperacion, error) {
	for _, c := range CodigosOperacion {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCodigoOperacionInvalido, s)
}

// ── Operation variants ────────────────────────────────────────────────────────
// Each family carries only the fields that make sense for it, so a rate on a
// transfer or a bank on a physical USD/USDT movement cannot be represented.

// Operacion is implemented by the six operation families below.
type Operacion interface {
	Codigo() CodigoOperacion
	operacion()
}

// IngresoLocal: local currency comes in (ARS_IN).
type IngresoLocal struct {
	BancoID     string
	Deducciones *Deducciones
}

// EgresoLocal: local currency goes out (ARS_OUT).
type EgresoLocal struct {
	BancoID     string
	Deducciones *Deducciones
}

// CompraDivisa: the client tenders local currency and receives Activo.
type CompraDivisa struct {
	Activo      Activo
	Cotizacion  decimal.Decimal
	BancoID     string
	Deducciones *Deducciones
}

// VentaDivisa: the client tenders Activo and receives local currency.
type VentaDivisa struct {
	Activo      Activo
	Cotizacion  decimal.Decimal
	BancoID     string
	Deducciones *Deducciones
}

// IngresoDivisa: physical Activo comes in. Cash only.
type IngresoDivisa struct{ Activo Activo }

// EgresoDivisa: physical Activo goes out. Cash only.
type EgresoDivisa struct{ Activo Activo }

func (IngresoLocal) Codigo() CodigoOperacion  { return OpIngresoARS }
func (EgresoLocal) Codigo() CodigoOperacion   { return OpEgresoARS }
func (o CompraDivisa) Codigo() CodigoOperacion { return CodigoOperacion(string(o.Activo) + "_BUY") }
func (o VentaDivisa) Codigo() CodigoOperacion  { return CodigoOperacion(string(o.Activo) + "_SELL") }
func (o IngresoDivisa) Codigo() CodigoOperacion {
	return CodigoOperacion(string(o.Activo) + "_IN")
}
func (o EgresoDivisa) Codigo() CodigoOperacion { return CodigoOperacion(string(o.Activo) + "_OUT") }

func (IngresoLocal) operacion()  {}
func (EgresoLocal) operacion()   {}
func (CompraDivisa) operacion()  {}
func (VentaDivisa) operacion()   {}
func (IngresoDivisa) operacion() {}
func (EgresoDivisa) operacion()  {}

// ParametrosOperacion are the optional wire fields that accompany a code.
type ParametrosOperacion struct {
	BancoID     string
	Cotizacion  *decimal.Decimal
	Deducciones *Deducciones
}

// NuevaOperacion builds the variant for codigo, rejecting parameters the
// family does not accept.
func NuevaOperacion(codigo CodigoOperacion, p ParametrosOperacion) (Operacion, error) {
	switch codigo {
	case OpIngresoARS, OpEgresoARS:
		if p.Cotizacion != nil {
			return nil, ErrCotizacionNoPermitida
		}
		if codigo == OpIngresoARS {
			return IngresoLocal{BancoID: p.BancoID, Deducciones: p.Deducciones}, nil
		}
		return EgresoLocal{BancoID: p.BancoID, Deducciones: p.Deducciones}, nil

	case OpCompraUSDT, OpCompraUSD, OpVentaUSDT, OpVentaUSD:
		if p.Cotizacion == nil || !p.Cotizacion.IsPositive() {
			return nil, ErrCotizacionRequerida
		}
		activo := ActivoUSD
		if codigo == OpCompraUSDT || codigo == OpVentaUSDT {
			activo = ActivoUSDT
		}
		if codigo == OpCompraUSDT || codigo == OpCompraUSD {
			return CompraDivisa{Activo: activo, Cotizacion: *p.Cotizacion, BancoID: p.BancoID, Deducciones: p.Deducciones}, nil
		}
		return VentaDivisa{Activo: activo, Cotizacion: *p.Cotizacion, BancoID: p.BancoID, Deducciones: p.Deducciones}, nil

	case OpIngresoUSDT, OpEgresoUSDT, OpIngresoUSD, OpEgresoUSD:
		if p.Cotizacion != nil {
			return nil, ErrCotizacionNoPermitida
		}
		if p.BancoID != "" {
			return nil, ErrBancoNoPermitido
		}
		if p.Deducciones.Alguna() {
			return nil, ErrDeduccionesNoPermitidas
		}
		activo := ActivoUSD
		if codigo == OpIngresoUSDT || codigo == OpEgresoUSDT {
			activo = ActivoUSDT
		}
		if codigo == OpIngresoUSDT || codigo == OpIngresoUSD {
			return IngresoDivisa{Activo: activo}, nil
		}
		return EgresoDivisa{Activo: activo}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCodigoOperacionInvalido, codigo)
}

// ParseOperacion validates the raw code and builds its variant.
func ParseOperacion(codigo string, p ParametrosOperacion) (Operacion, error) {
	c, err := ParseCodigo(codigo)
	if err != nil {
		return nil, err
	}
	return NuevaOperacion(c, p)
}

// SinBanco reports whether codes of this family never carry a bank.
func SinBanco(codigo CodigoOperacion) bool {
	switch codigo {
	case OpIngresoUSDT, OpEgresoUSDT, OpIngresoUSD, OpEgresoUSD:
		return true
	}
	return false
}

// RequiereCotizacion reports whether the code is a buy or a sell.
func RequiereCotizacion(codigo CodigoOperacion) bool {
	switch codigo {
	case OpCompraUSDT, OpVentaUSDT, OpCompraUSD, OpVentaUSD:
		return true
	}
	return false
}
