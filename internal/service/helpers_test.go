package service

import (
	"context"
	"sync"
	"testing"

	"casacambio/internal/model"
	"casacambio/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ── In-memory DocumentoRepository ─────────────────────────────────────────────

type stubDocumentoRepo struct {
	mu    sync.Mutex
	docs  map[string]model.Documento
	fallo error
}

var _ repository.DocumentoRepository = (*stubDocumentoRepo)(nil)

func newStubDocumentoRepo() *stubDocumentoRepo {
	return &stubDocumentoRepo{docs: make(map[string]model.Documento)}
}

func (r *stubDocumentoRepo) Cargar(_ context.Context, clave string) (*model.Documento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[clave]
	if !ok {
		return nil, repository.ErrDocumentoNoEncontrado
	}
	return &d, nil
}

func (r *stubDocumentoRepo) Guardar(_ context.Context, d *model.Documento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallo != nil {
		return r.fallo
	}
	cp := *d
	cp.Contenido = append([]byte(nil), d.Contenido...)
	r.docs[d.Clave] = cp
	return nil
}

func (r *stubDocumentoRepo) guardados(clave string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[clave]; ok {
		return 1
	}
	return 0
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// sesionBasica is an open-ready snapshot with ARS, USD and USDT in cash and
// one bank row.
func sesionBasica() model.SesionCaja {
	return model.SesionCaja{
		AbiertaPor: "1",
		Monedas: map[string]model.SaldoMoneda{
			"ARS":  {MontoInicial: dec("10000"), MontoActual: dec("10000")},
			"USD":  {MontoInicial: dec("100"), MontoActual: dec("100")},
			"USDT": {MontoInicial: dec("50"), MontoActual: dec("50")},
		},
		SaldosBancarios: []model.SaldoBancario{{BancoID: "B1", Moneda: "ARS", Monto: dec("5000")}},
	}
}
