package model

import "github.com/shopspring/decimal"

// Reference data. IDs are strings: built-in defaults use "1", "2", ...;
// entries created through the API get a UUID.

type Banco struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
	Pais   string `json:"pais"`
	Activo bool   `json:"activo"`
}

// Moneda is a fiat currency held in cash and at banks.
type Moneda struct {
	ID         string          `json:"id"`
	Codigo     string          `json:"codigo"`
	Nombre     string          `json:"nombre"`
	Simbolo    string          `json:"simbolo"`
	TasaCompra decimal.Decimal `json:"tasa_compra"`
	TasaVenta  decimal.Decimal `json:"tasa_venta"`
	Activo     bool            `json:"activo"`
}

// Cripto is held in cash (wallet) only, never in the bank snapshot.
type Cripto struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
	Red    string `json:"red"`
	Activo bool   `json:"activo"`
}

type TipoOperacion struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
	Activo      bool   `json:"activo"`
}

// Permisos are the per-area access flags of an operator.
type Permisos struct {
	Clientes      bool `json:"clientes"`
	Proveedores   bool `json:"proveedores"`
	Bancos        bool `json:"bancos"`
	Criptos       bool `json:"criptos"`
	Monedas       bool `json:"monedas"`
	Operadores    bool `json:"operadores"`
	Transacciones bool `json:"transacciones"`
	Reportes      bool `json:"reportes"`
}

// Permiso names, as carried in JWT claims and checked by middleware.
const (
	PermisoClientes      = "clientes"
	PermisoProveedores   = "proveedores"
	PermisoBancos        = "bancos"
	PermisoCriptos       = "criptos"
	PermisoMonedas       = "monedas"
	PermisoOperadores    = "operadores"
	PermisoTransacciones = "transacciones"
	PermisoReportes      = "reportes"
)

// Lista returns the names of the enabled flags.
func (p Permisos) Lista() []string {
	var out []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{p.Clientes, PermisoClientes},
		{p.Proveedores, PermisoProveedores},
		{p.Bancos, PermisoBancos},
		{p.Criptos, PermisoCriptos},
		{p.Monedas, PermisoMonedas},
		{p.Operadores, PermisoOperadores},
		{p.Transacciones, PermisoTransacciones},
		{p.Reportes, PermisoReportes},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// Operador stores system users. Rol: "admin" | "operador"
type Operador struct {
	ID           string   `json:"id"`
	Nombre       string   `json:"nombre"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	Rol          string   `json:"rol"`
	Permisos     Permisos `json:"permisos"`
	Activo       bool     `json:"activo"`
}

type Cliente struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	TipoDocumento   string `json:"tipo_documento"`
	NumeroDocumento string `json:"numero_documento"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono"`
}
