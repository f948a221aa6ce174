package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"casacambio/internal/dto"
	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entornoTransacciones struct {
	svc     TransaccionService
	caja    CajaService
	libro   LibroBancosService
	cliente model.Cliente
	almacen *repository.Almacen[[]model.Transaccion]
}

func nuevoEntornoTransacciones(t *testing.T) entornoTransacciones {
	t.Helper()
	ctx := context.Background()
	repo := newStubDocumentoRepo()

	libro := NewLibroBancosService(nil)
	caja := NewCajaService(libro, nil, nil, nil, nil)
	s := sesionBasica()
	s.SaldosBancarios = []model.SaldoBancario{{BancoID: "1", Moneda: "ARS", Monto: dec("5000")}}
	_, err := caja.Abrir(ctx, s)
	require.NoError(t, err)

	clientes := NewClienteService(nil)
	ana, err := clientes.Crear(ctx, model.Cliente{Nombre: "Ana Gómez", TipoDocumento: "DNI", NumeroDocumento: "30111222"})
	require.NoError(t, err)

	almacen := repository.NewAlmacen[[]model.Transaccion](repo, repository.ClaveTransacciones)
	svc := NewTransaccionService(
		NewLiquidador(caja, libro), nil, clientes,
		NewBancoService(nil), NewTipoOperacionService(nil), almacen,
	)
	return entornoTransacciones{svc: svc, caja: caja, libro: libro, cliente: ana, almacen: almacen}
}

func (e entornoTransacciones) pedido(codigo, monto string) dto.CrearTransaccionRequest {
	return dto.CrearTransaccionRequest{
		ClienteID:       e.cliente.ID,
		TipoOperacion:   "EXCHANGE",
		OperacionMoneda: codigo,
		Monto:           dec(monto),
	}
}

func (e entornoTransacciones) efectivo(moneda string) string {
	s, _ := e.caja.Actual()
	return s.Monedas[moneda].MontoActual.String()
}

func enFecha(svc TransaccionService, t time.Time) {
	svc.(*transaccionService).ahora = func() time.Time { return t }
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func TestRegistrar_CompraUSDTLiquidaYGuarda(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	req := e.pedido("USDT_BUY", "1000")
	req.Cotizacion = decPtr("1000")
	req.BancoID = "1"
	req.Deducciones = &dto.DeduccionesRequest{}

	tx, movs, err := e.svc.Registrar(context.Background(), "op-1", req)
	require.NoError(t, err)

	assert.Equal(t, model.OpCompraUSDT, tx.OperacionMoneda)
	assert.Equal(t, "op-1", tx.OperadorID)
	require.NotNil(t, tx.MontoCalculado)
	assertDec(t, "1", *tx.MontoCalculado)
	require.NotNil(t, tx.BancoID)
	assert.Equal(t, "1", *tx.BancoID)
	assert.Len(t, movs, 3)

	assertDec(t, "9000", dec(e.efectivo("ARS")))
	assertDec(t, "51", dec(e.efectivo("USDT")))
	assertDec(t, "4000", e.libro.ObtenerSaldo("1", "ARS"))

	got, err := e.svc.ObtenerPorID(tx.ID.String())
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
}

func TestRegistrar_MasRecientePrimero(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	a, _, err := e.svc.Registrar(ctx, "1", e.pedido("USD_IN", "10"))
	require.NoError(t, err)
	b, _, err := e.svc.Registrar(ctx, "1", e.pedido("USD_OUT", "3"))
	require.NoError(t, err)

	lista, total, err := e.svc.Listar(dto.TransaccionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, b.ID, lista[0].ID)
	assert.Equal(t, a.ID, lista[1].ID)
	assertDec(t, "107", dec(e.efectivo("USD")))
}

func TestRegistrar_SinCajaAbiertaSeGuardaIgual(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	_, err := e.caja.Cerrar(ctx, "1")
	require.NoError(t, err)

	_, movs, err := e.svc.Registrar(ctx, "1", e.pedido("ARS_IN", "100"))
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.False(t, movs[0].Aplicado)

	_, total, err := e.svc.Listar(dto.TransaccionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRegistrar_FechaExplicita(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	req := e.pedido("ARS_IN", "1")
	f := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	req.Fecha = &f

	tx, _, err := e.svc.Registrar(context.Background(), "1", req)
	require.NoError(t, err)
	assert.True(t, tx.Fecha.Equal(f))
}

func TestRegistrar_Rechazos(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dto.CrearTransaccionRequest)
		want   error
	}{
		{"monto cero", func(r *dto.CrearTransaccionRequest) { r.Monto = dec("0") }, ErrMontoInvalido},
		{"monto negativo", func(r *dto.CrearTransaccionRequest) { r.Monto = dec("-5") }, ErrMontoInvalido},
		{"código desconocido", func(r *dto.CrearTransaccionRequest) { r.OperacionMoneda = "EUR_BUY" }, ErrCodigoOperacionInvalido},
		{"compra sin cotización", func(r *dto.CrearTransaccionRequest) { r.OperacionMoneda = "USD_BUY" }, ErrCotizacionRequerida},
		{"ingreso con cotización", func(r *dto.CrearTransaccionRequest) { r.Cotizacion = decPtr("10") }, ErrCotizacionNoPermitida},
		{"divisa con banco", func(r *dto.CrearTransaccionRequest) {
			r.OperacionMoneda, r.BancoID = "USD_IN", "1"
		}, ErrBancoNoPermitido},
		{"divisa con deducciones", func(r *dto.CrearTransaccionRequest) {
			r.OperacionMoneda, r.Deducciones = "USDT_OUT", &dto.DeduccionesRequest{Copter: true}
		}, ErrDeduccionesNoPermitidas},
		{"personalizada fuera de rango", func(r *dto.CrearTransaccionRequest) {
			r.Deducciones = &dto.DeduccionesRequest{Personalizada: true, ValorPersonalizado: decPtr("101")}
		}, ErrOperacionInvalida},
		{"cliente inexistente", func(r *dto.CrearTransaccionRequest) { r.ClienteID = "nadie" }, ErrNoEncontrado},
		{"banco inexistente", func(r *dto.CrearTransaccionRequest) { r.BancoID = "99" }, ErrNoEncontrado},
		{"tipo desconocido", func(r *dto.CrearTransaccionRequest) { r.TipoOperacion = "OTRO" }, ErrOperacionInvalida},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := nuevoEntornoTransacciones(t)
			req := e.pedido("ARS_IN", "100")
			tt.mutate(&req)

			_, _, err := e.svc.Registrar(context.Background(), "1", req)
			assert.ErrorIs(t, err, tt.want)

			_, total, _ := e.svc.Listar(dto.TransaccionFilter{})
			assert.Zero(t, total)
			assertDec(t, "10000", dec(e.efectivo("ARS")))
		})
	}
}

// ── Calcular ──────────────────────────────────────────────────────────────────

func TestCalcular_NoMueveSaldos(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	req := e.pedido("USD_SELL", "10")
	req.Cotizacion = decPtr("1200")
	req.Deducciones = &dto.DeduccionesRequest{IIBB: true, DebCred: true}

	calc, err := e.svc.Calcular(req)
	require.NoError(t, err)
	assertDec(t, "3.6", calc.PorcentajeDeducciones)
	require.NotNil(t, calc.MontoCalculado)
	assertDec(t, "12000", *calc.MontoCalculado)
	require.NotNil(t, calc.MontoNeto)
	assertDec(t, "11568", *calc.MontoNeto)

	assertDec(t, "100", dec(e.efectivo("USD")))
	_, total, _ := e.svc.Listar(dto.TransaccionFilter{})
	assert.Zero(t, total)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestFiltrar_Periodos(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	hoy := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	enFecha(e.svc, hoy)

	for _, f := range []time.Time{
		hoy.Add(-time.Hour),
		hoy.AddDate(0, 0, -3),
		hoy.AddDate(0, 0, -20),
		hoy.AddDate(0, -3, 0),
		time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC),
	} {
		req := e.pedido("ARS_IN", "1")
		fecha := f
		req.Fecha = &fecha
		_, _, err := e.svc.Registrar(ctx, "1", req)
		require.NoError(t, err)
	}

	cuenta := func(f dto.TransaccionFilter) int {
		t.Helper()
		out, err := e.svc.Filtrar(f)
		require.NoError(t, err)
		return len(out)
	}
	assert.Equal(t, 5, cuenta(dto.TransaccionFilter{Periodo: "todos"}))
	assert.Equal(t, 1, cuenta(dto.TransaccionFilter{Periodo: "dia"}))
	assert.Equal(t, 2, cuenta(dto.TransaccionFilter{Periodo: "semana"}))
	assert.Equal(t, 4, cuenta(dto.TransaccionFilter{Periodo: "mes"}))
	// Custom ranges include the whole end day.
	assert.Equal(t, 2, cuenta(dto.TransaccionFilter{Periodo: "custom", Desde: "2024-05-01", Hasta: "2024-06-01"}))

	_, err := e.svc.Filtrar(dto.TransaccionFilter{Periodo: "custom", Desde: "2024-06-10", Hasta: "2024-06-01"})
	assert.ErrorIs(t, err, ErrFiltroInvalido)
	_, err = e.svc.Filtrar(dto.TransaccionFilter{Periodo: "custom", Desde: "ayer"})
	assert.ErrorIs(t, err, ErrFiltroInvalido)
	_, err = e.svc.Filtrar(dto.TransaccionFilter{Periodo: "anio"})
	assert.ErrorIs(t, err, ErrFiltroInvalido)
}

func TestFiltrar_Busqueda(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	req := e.pedido("ARS_IN", "1")
	req.Descripcion = "Pago de alquiler"
	_, _, err := e.svc.Registrar(ctx, "1", req)
	require.NoError(t, err)
	req = e.pedido("USD_IN", "1")
	req.TipoOperacion = "LOAN_DEPOSIT"
	_, _, err = e.svc.Registrar(ctx, "1", req)
	require.NoError(t, err)

	tests := []struct {
		q    string
		want int
	}{
		{"ALQUILER", 1},
		{"ana gó", 2},
		{"loan", 1},
		{"usd_in", 1},
		{"  ", 2},
		{"inexistente", 0},
	}
	for _, tt := range tests {
		out, err := e.svc.Filtrar(dto.TransaccionFilter{Busqueda: tt.q})
		require.NoError(t, err)
		assert.Len(t, out, tt.want, "q=%q", tt.q)
	}
}

func TestListar_Paginacion(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, _, err := e.svc.Registrar(ctx, "1", e.pedido("ARS_IN", "1"))
		require.NoError(t, err)
	}

	page, total, err := e.svc.Listar(dto.TransaccionFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page, 3)

	page, _, err = e.svc.Listar(dto.TransaccionFilter{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, _, err = e.svc.Listar(dto.TransaccionFilter{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestResumen(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()

	compra := e.pedido("USDT_BUY", "2000")
	compra.Cotizacion = decPtr("1000")
	_, _, err := e.svc.Registrar(ctx, "1", compra)
	require.NoError(t, err)
	_, _, err = e.svc.Registrar(ctx, "1", e.pedido("USDT_IN", "5"))
	require.NoError(t, err)
	_, _, err = e.svc.Registrar(ctx, "1", e.pedido("ARS_IN", "300"))
	require.NoError(t, err)

	r, err := e.svc.Resumen(dto.TransaccionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Cantidad)
	assert.Equal(t, 1, r.ClientesDistintos)
	// 2 USDT converted plus 5 USDT received.
	assertDec(t, "7", r.VolumenUSDT)
	assertDec(t, "300", r.VolumenOtros)
}

func TestNombreCliente(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	assert.Equal(t, "Ana Gómez", e.svc.NombreCliente(e.cliente.ID))
	assert.Empty(t, e.svc.NombreCliente("x"))
}

// ── Persistencia ──────────────────────────────────────────────────────────────

func TestTransacciones_PersisteYRecarga(t *testing.T) {
	e := nuevoEntornoTransacciones(t)
	ctx := context.Background()
	req := e.pedido("USD_SELL", "10")
	req.Cotizacion = decPtr("1150.5")
	req.Deducciones = &dto.DeduccionesRequest{Personalizada: true, ValorPersonalizado: decPtr("2.25")}
	req.Descripcion = "venta mostrador"
	_, _, err := e.svc.Registrar(ctx, "1", req)
	require.NoError(t, err)
	_, _, err = e.svc.Registrar(ctx, "1", e.pedido("USDT_OUT", "2"))
	require.NoError(t, err)

	otro := NewTransaccionService(nil, nil, nil, nil, nil, e.almacen)
	require.NoError(t, otro.Cargar(ctx))

	antes, _ := e.svc.Filtrar(dto.TransaccionFilter{})
	despues, _ := otro.Filtrar(dto.TransaccionFilter{})
	ja, _ := json.Marshal(antes)
	jd, _ := json.Marshal(despues)
	assert.JSONEq(t, string(ja), string(jd))

	otro.Reiniciar()
	_, total, _ := otro.Listar(dto.TransaccionFilter{})
	assert.Zero(t, total)
}

func TestTransaccionToResponse(t *testing.T) {
	banco := "1"
	tx := model.Transaccion{
		OperacionMoneda: model.OpIngresoARS,
		Monto:           dec("10"),
		BancoID:         &banco,
		Deducciones:     &model.Deducciones{IIBB: true},
	}
	resp := TransaccionToResponse(tx, "Ana")
	assert.Equal(t, "ARS_IN", resp.OperacionMoneda)
	assert.Equal(t, "Ana", resp.ClienteNombre)
	require.NotNil(t, resp.Deducciones)
	assert.True(t, resp.Deducciones.IIBB)

	movs := MovimientosToResponse([]Movimiento{{Destino: DestinoBanco, BancoID: "1", Moneda: "ARS", Delta: dec("5"), Aplicado: true}})
	require.Len(t, movs, 1)
	assert.Equal(t, DestinoBanco, movs[0].Destino)
}
