package model

import "github.com/shopspring/decimal"

// SaldoBancario is a ledger row: the running balance of one bank in one
// currency. (BancoID, Moneda) is unique.
type SaldoBancario struct {
	BancoID string          `json:"banco_id"`
	Moneda  string          `json:"moneda"`
	Monto   decimal.Decimal `json:"monto"`
}

// Clave identifies the row inside the ledger.
func (s SaldoBancario) Clave() string { return s.BancoID + "/" + s.Moneda }
