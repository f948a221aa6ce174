package service

import (
	"context"
	"fmt"

	"casacambio/internal/model"

	"github.com/shopspring/decimal"
)

// Deduction percentages. They add up; they never compound.
var (
	PorcentajeIIBB    = decimal.NewFromInt(3)
	PorcentajeDebCred = decimal.RequireFromString("0.6")
	PorcentajeCopter  = decimal.RequireFromString("0.3")
)

var cien = decimal.NewFromInt(100)

// PorcentajeDeducciones sums the enabled percentages. Nil means none.
func PorcentajeDeducciones(d *model.Deducciones) decimal.Decimal {
	total := decimal.Zero
	if d == nil {
		return total
	}
	if d.IIBB {
		total = total.Add(PorcentajeIIBB)
	}
	if d.DebCred {
		total = total.Add(PorcentajeDebCred)
	}
	if d.Copter {
		total = total.Add(PorcentajeCopter)
	}
	if d.Personalizada && d.ValorPersonalizado != nil {
		total = total.Add(*d.ValorPersonalizado)
	}
	return total
}

// CalcularMontoNeto returns monto × (1 − total/100).
func CalcularMontoNeto(monto decimal.Decimal, d *model.Deducciones) decimal.Decimal {
	pct := PorcentajeDeducciones(d)
	if pct.IsZero() {
		return monto
	}
	return monto.Mul(decimal.NewFromInt(1).Sub(pct.Div(cien)))
}

// CalcularMontoConvertido derives the counter-currency amount of a buy or a
// sell. Buys convert the net local amount tendered; sells convert the gross
// foreign amount, deductions being applied afterwards by the caller.
func CalcularMontoConvertido(monto decimal.Decimal, op model.Operacion) (decimal.Decimal, error) {
	switch o := op.(type) {
	case model.CompraDivisa:
		return CalcularMontoNeto(monto, o.Deducciones).Div(o.Cotizacion), nil
	case model.VentaDivisa:
		return monto.Mul(o.Cotizacion), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s no tiene monto convertido", ErrOperacionInvalida, op.Codigo())
}

// Montos are the derived amounts stored on a transaction.
type Montos struct {
	MontoNeto      *decimal.Decimal
	MontoCalculado *decimal.Decimal
}

// CalcularMontos applies deductions before conversion for local in/out and
// buys, and after conversion for sells. Physical USD/USDT movements derive
// nothing.
func CalcularMontos(op model.Operacion, monto decimal.Decimal) (Montos, error) {
	switch o := op.(type) {
	case model.IngresoLocal:
		neto := CalcularMontoNeto(monto, o.Deducciones)
		return Montos{MontoNeto: &neto}, nil
	case model.EgresoLocal:
		neto := CalcularMontoNeto(monto, o.Deducciones)
		return Montos{MontoNeto: &neto}, nil
	case model.CompraDivisa:
		neto := CalcularMontoNeto(monto, o.Deducciones)
		calc, err := CalcularMontoConvertido(monto, o)
		if err != nil {
			return Montos{}, err
		}
		return Montos{MontoNeto: &neto, MontoCalculado: &calc}, nil
	case model.VentaDivisa:
		calc, err := CalcularMontoConvertido(monto, o)
		if err != nil {
			return Montos{}, err
		}
		neto := CalcularMontoNeto(calc, o.Deducciones)
		return Montos{MontoNeto: &neto, MontoCalculado: &calc}, nil
	case model.IngresoDivisa, model.EgresoDivisa:
		return Montos{}, nil
	}
	return Montos{}, fmt.Errorf("%w: %T", ErrOperacionInvalida, op)
}

// ── Liquidador ────────────────────────────────────────────────────────────────

const (
	DestinoCaja  = "caja"
	DestinoBanco = "banco"
)

// Movimiento is one balance delta produced by a settlement. Aplicado is false
// for cash deltas dropped because the currency was not in the open session.
type Movimiento struct {
	Destino  string          `json:"destino"`
	BancoID  string          `json:"banco_id,omitempty"`
	Moneda   string          `json:"moneda"`
	Delta    decimal.Decimal `json:"delta"`
	Aplicado bool            `json:"aplicado"`
}

// Liquidador applies the balance effects of a transaction. It owns no state.
type Liquidador struct {
	caja  CajaEfectivo
	libro LibroBancos
}

func NewLiquidador(caja CajaEfectivo, libro LibroBancos) *Liquidador {
	return &Liquidador{caja: caja, libro: libro}
}

// Liquidar dispatches the cash and bank deltas for t. When MontoNeto is
// absent the tendered amount is used; legs that need MontoCalculado are
// skipped when it is absent.
func (l *Liquidador) Liquidar(ctx context.Context, t model.Transaccion) ([]Movimiento, error) {
	op, err := t.Operacion()
	if err != nil {
		return nil, err
	}
	neto := t.Monto
	if t.MontoNeto != nil {
		neto = *t.MontoNeto
	}

	var movs []Movimiento
	efectivo := func(moneda string, delta decimal.Decimal) {
		ok := l.caja.AplicarDeltaEfectivo(ctx, moneda, delta)
		movs = append(movs, Movimiento{Destino: DestinoCaja, Moneda: moneda, Delta: delta, Aplicado: ok})
	}
	banco := func(bancoID, moneda string, delta decimal.Decimal) {
		if bancoID == "" {
			return
		}
		l.libro.AplicarDelta(ctx, bancoID, moneda, delta)
		movs = append(movs, Movimiento{Destino: DestinoBanco, BancoID: bancoID, Moneda: moneda, Delta: delta, Aplicado: true})
	}

	switch o := op.(type) {
	case model.IngresoLocal:
		efectivo(model.MonedaLocal, neto)
		banco(o.BancoID, model.MonedaLocal, neto)
	case model.EgresoLocal:
		efectivo(model.MonedaLocal, neto.Neg())
		banco(o.BancoID, model.MonedaLocal, neto.Neg())
	case model.CompraDivisa:
		efectivo(model.MonedaLocal, neto.Neg())
		banco(o.BancoID, model.MonedaLocal, neto.Neg())
		if t.MontoCalculado != nil {
			efectivo(string(o.Activo), *t.MontoCalculado)
		}
	case model.VentaDivisa:
		efectivo(string(o.Activo), t.Monto.Neg())
		if t.MontoCalculado != nil {
			local := *t.MontoCalculado
			if t.MontoNeto != nil {
				local = *t.MontoNeto
			}
			efectivo(model.MonedaLocal, local)
			banco(o.BancoID, model.MonedaLocal, local)
		}
	case model.IngresoDivisa:
		efectivo(string(o.Activo), t.Monto)
	case model.EgresoDivisa:
		efectivo(string(o.Activo), t.Monto.Neg())
	}
	return movs, nil
}
