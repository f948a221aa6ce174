package service

import (
	"context"
	"testing"

	"casacambio/internal/dto"
	"casacambio/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicios_RecargaReproduceElEstado(t *testing.T) {
	ctx := context.Background()
	repo := newStubDocumentoRepo()

	a := NewServicios(OpcionesServicios{Repo: repo})
	require.NoError(t, a.Cargar(ctx))

	sesion := a.Caja.PrepararApertura("1", dto.AbrirCajaRequest{
		Efectivo: map[string]decimal.Decimal{"ARS": dec("10000"), "USD": dec("100")},
		Bancos:   []dto.SaldoBancarioRequest{{BancoID: "1", Moneda: "ARS", Monto: dec("5000")}},
	})
	_, err := a.Caja.Abrir(ctx, sesion)
	require.NoError(t, err)

	cli, err := a.Clientes.Crear(ctx, model.Cliente{Nombre: "Luis Pérez", TipoDocumento: "DNI", NumeroDocumento: "28999111"})
	require.NoError(t, err)

	for _, req := range []dto.CrearTransaccionRequest{
		{ClienteID: cli.ID, TipoOperacion: "EXCHANGE", OperacionMoneda: "ARS_IN", Monto: dec("1000"), BancoID: "1",
			Deducciones: &dto.DeduccionesRequest{IIBB: true}},
		{ClienteID: cli.ID, TipoOperacion: "EXCHANGE", OperacionMoneda: "USD_SELL", Monto: dec("10"), BancoID: "1",
			Cotizacion: decPtr("1200")},
	} {
		_, _, err := a.Transacciones.Registrar(ctx, "1", req)
		require.NoError(t, err)
	}

	b := NewServicios(OpcionesServicios{Repo: repo})
	require.NoError(t, b.Cargar(ctx))

	assert.Equal(t, a.Caja.Estado(), b.Caja.Estado())
	sa, _ := a.Caja.Actual()
	sb, ok := b.Caja.Actual()
	require.True(t, ok)
	for codigo, m := range sa.Monedas {
		assertDec(t, m.MontoActual.String(), sb.Monedas[codigo].MontoActual)
	}
	assertDec(t, "22970", sb.Monedas["ARS"].MontoActual)
	assertDec(t, "90", sb.Monedas["USD"].MontoActual)
	assertDec(t, a.Libro.ObtenerSaldo("1", "ARS").String(), b.Libro.ObtenerSaldo("1", "ARS"))

	txa, _, err := a.Transacciones.Listar(dto.TransaccionFilter{Periodo: "todos"})
	require.NoError(t, err)
	txb, _, err := b.Transacciones.Listar(dto.TransaccionFilter{Periodo: "todos"})
	require.NoError(t, err)
	require.Len(t, txb, 2)
	for i := range txa {
		assert.Equal(t, txa[i].ID, txb[i].ID)
	}
	assert.Equal(t, model.OpVentaUSD, txb[0].OperacionMoneda)

	_, err = b.Clientes.Obtener(cli.ID)
	assert.NoError(t, err)
}

func TestServicios_SinRepoUsaDefaults(t *testing.T) {
	s := NewServicios(OpcionesServicios{})
	require.NoError(t, s.Cargar(context.Background()))
	assert.NotNil(t, s.Serial)
	assert.Len(t, s.Bancos.Listar(), 2)
	assert.Len(t, s.Monedas.ListarMonedas(), 3)
	assert.Len(t, s.Tipos.Listar(), 6)
	assert.Empty(t, s.Clientes.Listar())
	assert.Equal(t, Cerrada, s.Caja.Estado())
}
