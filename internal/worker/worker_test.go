package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"casacambio/internal/infra"
	"casacambio/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// ── Stubs ────────────────────────────────────────────────────────────────────

type procesadorStub struct {
	fallo    error
	llamadas int
	panico   bool
}

func (p *procesadorStub) Procesar(context.Context, json.RawMessage) error {
	p.llamadas++
	if p.panico {
		panic("boom")
	}
	return p.fallo
}

type enviadorStub struct {
	fallo    error
	to       string
	subject  string
	adjuntos []infra.Adjunto
}

func (e *enviadorStub) Configurado() bool { return true }

func (e *enviadorStub) Enviar(to, subject, _ string, adjuntos ...infra.Adjunto) error {
	e.to, e.subject, e.adjuntos = to, subject, adjuntos
	return e.fallo
}

type bancosStub []model.Banco

func (b bancosStub) Listar() []model.Banco { return b }

type emailsStub struct {
	enviados []EmailJobPayload
}

func (e *emailsStub) EncolarEmail(_ context.Context, p EmailJobPayload) error {
	e.enviados = append(e.enviados, p)
	return nil
}

var (
	_ Procesador     = (*procesadorStub)(nil)
	_ Enviador       = (*enviadorStub)(nil)
	_ ListadorBancos = bancosStub(nil)
	_ EncoladorEmail = (*emailsStub)(nil)
	_ Procesador     = (*EmailWorker)(nil)
	_ Procesador     = (*CierreCajaWorker)(nil)
)

func sesionCerrada() model.SesionCaja {
	cierre := time.Date(2024, 6, 3, 19, 0, 0, 0, time.UTC)
	return model.SesionCaja{
		ID:    uuid.New(),
		Fecha: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		Monedas: map[string]model.SaldoMoneda{
			"ARS": {MontoInicial: decimal.NewFromInt(10000), MontoActual: decimal.NewFromInt(9000)},
			"USD": {MontoInicial: decimal.NewFromInt(100), MontoActual: decimal.NewFromInt(107)},
		},
		SaldosBancarios: []model.SaldoBancario{{BancoID: "1", Moneda: "ARS", Monto: decimal.NewFromInt(4000)}},
		AbiertaPor:      "1",
		CerradaPor:      "1",
		CerradaEn:       &cierre,
	}
}

func popJob(t *testing.T, rdb *redis.Client, queue string) (Job, string) {
	t.Helper()
	raw, err := rdb.RPop(context.Background(), queue).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	return job, raw
}

// ── Dispatcher ───────────────────────────────────────────────────────────────

func TestDispatcher_EncolarCierreCaja(t *testing.T) {
	_, rdb := newTestRedis(t)
	d := NewDispatcher(rdb)
	sesion := sesionCerrada()

	require.NoError(t, d.EncolarCierreCaja(context.Background(), sesion, 4))

	job, _ := popJob(t, rdb, QueueCierreCaja)
	assert.Equal(t, TipoCierreCaja, job.Type)
	assert.Zero(t, job.Intentos)
	var payload CierreCajaPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, 4, payload.Indice)
	assert.Equal(t, sesion.ID, payload.Sesion.ID)
	assert.True(t, payload.Sesion.Monedas["USD"].MontoActual.Equal(decimal.NewFromInt(107)))
}

func TestDispatcher_EncolarEmail(t *testing.T) {
	_, rdb := newTestRedis(t)
	d := NewDispatcher(rdb)

	require.NoError(t, d.EncolarEmail(context.Background(), EmailJobPayload{ToEmail: "caja@example.com"}))

	job, _ := popJob(t, rdb, QueueEmail)
	assert.Equal(t, TipoEmail, job.Type)
}

// ── Pool ─────────────────────────────────────────────────────────────────────

func encodeJob(t *testing.T, job Job) string {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return string(b)
}

func TestPool_ProcesarExito(t *testing.T) {
	mr, rdb := newTestRedis(t)
	proc := &procesadorStub{}
	p := NewPool(rdb, map[string]Procesador{TipoEmail: proc})

	p.procesar(context.Background(), QueueEmail, encodeJob(t, Job{Type: TipoEmail, Payload: json.RawMessage(`{}`)}))

	assert.Equal(t, 1, proc.llamadas)
	assert.False(t, mr.Exists(RetryKey))
	assert.False(t, mr.Exists(DLQPrefix+QueueEmail))
}

func TestPool_FalloProgramaReintento(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	p := NewPool(rdb, map[string]Procesador{TipoEmail: &procesadorStub{fallo: errors.New("smtp caído")}})

	antes := time.Now()
	p.procesar(ctx, QueueEmail, encodeJob(t, Job{Type: TipoEmail, Payload: json.RawMessage(`{}`)}))

	zs, err := rdb.ZRangeWithScores(ctx, RetryKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, zs, 1)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(zs[0].Member.(string)), &job))
	assert.Equal(t, 1, job.Intentos)
	assert.GreaterOrEqual(t, int64(zs[0].Score), antes.Add(30*time.Second).Unix())
}

func TestPool_TercerFalloVaAlDLQ(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	proc := &procesadorStub{fallo: errors.New("smtp caído")}
	p := NewPool(rdb, map[string]Procesador{TipoEmail: proc})
	p.espera = func(int) time.Duration { return 0 }

	p.procesar(ctx, QueueEmail, encodeJob(t, Job{Type: TipoEmail, Payload: json.RawMessage(`{}`)}))
	for i := 0; i < MaxIntentos-1; i++ {
		n, err := reencolarVencidos(ctx, rdb, time.Now().Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		_, raw := popJob(t, rdb, QueueEmail)
		p.procesar(ctx, QueueEmail, raw)
	}

	assert.Equal(t, MaxIntentos, proc.llamadas)
	n, err := DLQLength(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	pendientes, err := rdb.ZCard(ctx, RetryKey).Result()
	require.NoError(t, err)
	assert.Zero(t, pendientes)

	entradas, err := DLQListar(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entradas, 1)
	assert.Equal(t, "smtp caído", entradas[0].Reason)
	assert.Equal(t, MaxIntentos, entradas[0].Attempts)
}

func TestPool_PanicSeTrataComoFallo(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	p := NewPool(rdb, map[string]Procesador{TipoCierreCaja: &procesadorStub{panico: true}})

	p.procesar(ctx, QueueCierreCaja, encodeJob(t, Job{Type: TipoCierreCaja, Payload: json.RawMessage(`{}`)}))

	n, err := rdb.ZCard(ctx, RetryKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPool_TipoDesconocidoOPayloadIlegible(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	p := NewPool(rdb, map[string]Procesador{})

	p.procesar(ctx, QueueEmail, encodeJob(t, Job{Type: "factura", Payload: json.RawMessage(`{}`)}))
	p.procesar(ctx, QueueEmail, "no es json")

	entradas, err := DLQListar(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entradas, 2)
	assert.Equal(t, "payload ilegible", entradas[0].Reason)
	assert.Equal(t, "tipo de job desconocido", entradas[1].Reason)
}

// ── Retry cron ───────────────────────────────────────────────────────────────

func TestReencolarVencidos_SoloLosVencidos(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, programarReintento(ctx, rdb, Job{Type: TipoCierreCaja, Payload: json.RawMessage(`{"indice":1}`), Intentos: 1}, now.Add(-time.Second)))
	require.NoError(t, programarReintento(ctx, rdb, Job{Type: TipoEmail, Payload: json.RawMessage(`{}`), Intentos: 1}, now.Add(time.Hour)))

	n, err := reencolarVencidos(ctx, rdb, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	job, _ := popJob(t, rdb, QueueCierreCaja)
	assert.Equal(t, 1, job.Intentos)
	largo, err := rdb.LLen(ctx, QueueEmail).Result()
	require.NoError(t, err)
	assert.Zero(t, largo)
	restantes, err := rdb.ZCard(ctx, RetryKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), restantes)
}

// ── EmailWorker ──────────────────────────────────────────────────────────────

func TestEmailWorker_AdjuntaPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cierre_0.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0644))
	env := &enviadorStub{}
	w := NewEmailWorker(env)

	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "caja@example.com", Subject: "Cierre", PDFPath: path})
	require.NoError(t, w.Procesar(context.Background(), raw))

	assert.Equal(t, "caja@example.com", env.to)
	require.Len(t, env.adjuntos, 1)
	assert.Equal(t, "cierre_0.pdf", env.adjuntos[0].Nombre)
	assert.Equal(t, "application/pdf", env.adjuntos[0].Tipo)
}

func TestEmailWorker_Errores(t *testing.T) {
	ctx := context.Background()

	w := NewEmailWorker(&enviadorStub{fallo: errors.New("smtp caído")})
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "caja@example.com"})
	assert.ErrorContains(t, w.Procesar(ctx, raw), "smtp caído")

	raw, _ = json.Marshal(EmailJobPayload{ToEmail: "caja@example.com", PDFPath: "/no/existe.pdf"})
	assert.Error(t, w.Procesar(ctx, raw))

	// No recipient: nothing to do, and no retry.
	env := &enviadorStub{}
	assert.NoError(t, NewEmailWorker(env).Procesar(ctx, json.RawMessage(`{}`)))
	assert.Empty(t, env.to)

	assert.Error(t, w.Procesar(ctx, json.RawMessage(`[`)))
}

// ── CierreCajaWorker ─────────────────────────────────────────────────────────

func TestCierreCajaWorker_GeneraYEncolaEmail(t *testing.T) {
	dir := t.TempDir()
	emails := &emailsStub{}
	w := NewCierreCajaWorker(bancosStub{{ID: "1", Nombre: "BOA", Activo: true}}, emails, dir, "caja@example.com")
	sesion := sesionCerrada()

	raw, _ := json.Marshal(CierreCajaPayload{Sesion: sesion, Indice: 2})
	require.NoError(t, w.Procesar(context.Background(), raw))

	path := filepath.Join(dir, NombreReporte(2, sesion))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))

	require.Len(t, emails.enviados, 1)
	assert.Equal(t, "caja@example.com", emails.enviados[0].ToEmail)
	assert.Equal(t, path, emails.enviados[0].PDFPath)
	assert.Equal(t, "Cierre de caja 03/06/2024", emails.enviados[0].Subject)
}

func TestCierreCajaWorker_SinDestinatario(t *testing.T) {
	dir := t.TempDir()
	emails := &emailsStub{}
	w := NewCierreCajaWorker(nil, emails, dir, "")
	sesion := sesionCerrada()

	raw, _ := json.Marshal(CierreCajaPayload{Sesion: sesion})
	require.NoError(t, w.Procesar(context.Background(), raw))

	assert.FileExists(t, filepath.Join(dir, NombreReporte(0, sesion)))
	assert.Empty(t, emails.enviados)
}
