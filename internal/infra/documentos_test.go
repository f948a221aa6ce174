package infra

import (
	"bytes"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"casacambio/internal/config"
	"casacambio/internal/model"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sesionCerrada() model.SesionCaja {
	cierre := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	return model.SesionCaja{
		ID:    uuid.New(),
		Fecha: cierre.Add(-9 * time.Hour),
		Monedas: map[string]model.SaldoMoneda{
			"ARS": {MontoInicial: d("10000"), MontoActual: d("12500.5")},
			"USD": {MontoInicial: d("100"), MontoActual: d("80")},
		},
		SaldosBancarios: []model.SaldoBancario{{BancoID: "1", Moneda: "ARS", Monto: d("3000")}},
		AbiertaPor:      "1",
		CerradaPor:      "2",
		CerradaEn:       &cierre,
	}
}

func TestGenerarReporteCierre(t *testing.T) {
	pdf, err := GenerarReporteCierre(sesionCerrada(), map[string]string{"1": "Bank of America"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestGenerarComprobante(t *testing.T) {
	banco := "1"
	tx := model.Transaccion{
		ID:              uuid.New(),
		OperacionMoneda: model.OpCompraUSD,
		TipoOperacion:   "EXCHANGE",
		Monto:           d("1000"),
		Cotizacion:      func() *decimal.Decimal { c := d("1150"); return &c }(),
		BancoID:         &banco,
		Fecha:           time.Now(),
		Descripcion:     "Operación con descripción larga para forzar el salto de línea del comprobante",
	}
	pdf, err := GenerarComprobante(tx, "Ana Gómez")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestGuardarPDF(t *testing.T) {
	dir := t.TempDir() + "/sub"
	path, err := GuardarPDF(dir, "cierre.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestExportarTransacciones(t *testing.T) {
	neto := d("970")
	txs := []model.Transaccion{
		{ID: uuid.New(), ClienteID: "c1", OperacionMoneda: model.OpIngresoARS, Monto: d("1000"), MontoNeto: &neto, Fecha: time.Now()},
		{ID: uuid.New(), ClienteID: "c2", OperacionMoneda: model.OpIngresoUSD, Monto: d("5"), Fecha: time.Now()},
	}
	data, err := ExportarTransacciones(txs, func(id string) string { return "cliente " + id })
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(hojaTransacciones)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "cliente c1", rows[1][2])
	assert.Equal(t, "ARS_IN", rows[1][4])
	assert.Equal(t, "970", rows[1][8])
}

func TestMailer_SinConfiguracion(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.False(t, m.Configurado())
	assert.ErrorIs(t, m.Enviar("a@b.c", "x", "y"), ErrSMTPNoConfigurado)
}

func TestMailer_BreakerAbreTrasFallos(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.invalid", SMTPPort: 587, SMTPUser: "reportes@menlei.net"})
	envios := 0
	m.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		envios++
		assert.Equal(t, "smtp.invalid:587", addr)
		require.Len(t, e.Attachments, 1)
		return errors.New("connection refused")
	}

	adj := Adjunto{Nombre: "cierre.pdf", Contenido: []byte("%PDF"), Tipo: "application/pdf"}
	for i := 0; i < 5; i++ {
		assert.Error(t, m.Enviar("a@b.c", "Cierre", "adjunto", adj))
	}
	assert.Equal(t, gobreaker.StateOpen.String(), m.Estado())

	err := m.Enviar("a@b.c", "Cierre", "adjunto", adj)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, envios)
}
