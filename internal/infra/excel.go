package infra

import (
	"bytes"
	"fmt"

	"casacambio/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const hojaTransacciones = "Transacciones"

var encabezadosTransacciones = []string{
	"Fecha", "ID", "Cliente", "Tipo", "Operación", "Monto", "Cotización",
	"Monto convertido", "Monto neto", "Banco", "Operador", "Descripción",
}

// ExportarTransacciones writes one row per transaction to an xlsx workbook.
// nombreCliente resolves client IDs to display names.
func ExportarTransacciones(txs []model.Transaccion, nombreCliente func(id string) string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaTransacciones); err != nil {
		return nil, err
	}
	for i, h := range encabezadosTransacciones {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(hojaTransacciones, celda, h); err != nil {
			return nil, err
		}
	}
	negrita, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	ultima, _ := excelize.CoordinatesToCellName(len(encabezadosTransacciones), 1)
	if err := f.SetCellStyle(hojaTransacciones, "A1", ultima, negrita); err != nil {
		return nil, err
	}

	for i, t := range txs {
		fila := []interface{}{
			t.Fecha.Format("2006-01-02 15:04:05"),
			t.ID.String(),
			nombreCliente(t.ClienteID),
			t.TipoOperacion,
			string(t.OperacionMoneda),
			numero(&t.Monto),
			numero(t.Cotizacion),
			numero(t.MontoCalculado),
			numero(t.MontoNeto),
			texto(t.BancoID),
			t.OperadorID,
			t.Descripcion,
		}
		celda, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(hojaTransacciones, celda, &fila); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	return buf.Bytes(), nil
}

// numero renders decimals as float cells so spreadsheets can sum them; absent
// values stay empty.
func numero(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	f, _ := d.Float64()
	return f
}

func texto(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
