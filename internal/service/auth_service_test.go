package service

import (
	"context"
	"testing"
	"time"

	"casacambio/internal/config"
	"casacambio/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "secreto-de-prueba-con-32-caracteres!", JWTExpirationHours: 1, JWTRefreshHours: 2}
}

func hashRapido(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testConfig().JWTSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestLogin_AdminPorDefecto(t *testing.T) {
	ops := NewOperadorService(nil, hashRapido(t, "clave-admin"))
	auth := NewAuthService(ops, testConfig())

	resp, err := auth.Login(context.Background(), dto.LoginRequest{Email: "ALAN@menlei.net", Password: "clave-admin"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "1", resp.Operador.ID)
	assert.True(t, resp.Operador.Permisos.Transacciones)

	c := parseClaims(t, resp.AccessToken)
	assert.Equal(t, "1", c["operador_id"])
	assert.Equal(t, "access", c["tipo"])
	assert.Len(t, c["permisos"], 8)
}

func TestLogin_Rechazos(t *testing.T) {
	ctx := context.Background()

	sinHash := NewAuthService(NewOperadorService(nil, ""), testConfig())
	_, err := sinHash.Login(ctx, dto.LoginRequest{Email: "alan@menlei.net", Password: ""})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	ops := NewOperadorService(nil, hashRapido(t, "correcta"))
	auth := NewAuthService(ops, testConfig())
	_, err = auth.Login(ctx, dto.LoginRequest{Email: "alan@menlei.net", Password: "incorrecta"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
	_, err = auth.Login(ctx, dto.LoginRequest{Email: "nadie@menlei.net", Password: "correcta"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)

	inactivo := false
	_, err = ops.Actualizar(ctx, "1", dto.ActualizarOperadorRequest{Activo: &inactivo})
	require.NoError(t, err)
	_, err = auth.Login(ctx, dto.LoginRequest{Email: "alan@menlei.net", Password: "correcta"})
	assert.ErrorIs(t, err, ErrCredencialesInvalidas)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	ops := NewOperadorService(nil, hashRapido(t, "clave-admin"))
	auth := NewAuthService(ops, testConfig())
	login, err := auth.Login(ctx, dto.LoginRequest{Email: "alan@menlei.net", Password: "clave-admin"})
	require.NoError(t, err)

	// Access tokens cannot be used to refresh.
	_, err = auth.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalido)

	// Permission changes show up in the refreshed token.
	_, err = ops.Actualizar(ctx, "1", dto.ActualizarOperadorRequest{Permisos: &dto.PermisosDTO{Transacciones: true}})
	require.NoError(t, err)
	nuevo, err := auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"transacciones"}, parseClaims(t, nuevo.AccessToken)["permisos"])

	_, err = auth.Refresh(ctx, "no-es-un-token")
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestRefresh_TokenVencidoOFirmaAjena(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(NewOperadorService(nil, ""), testConfig())

	vencido := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operador_id": "1", "tipo": "refresh", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	s, err := vencido.SignedString([]byte(testConfig().JWTSecret))
	require.NoError(t, err)
	_, err = auth.Refresh(ctx, s)
	assert.ErrorIs(t, err, ErrTokenInvalido)

	ajeno := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operador_id": "1", "tipo": "refresh", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err = ajeno.SignedString([]byte("otra-clave"))
	require.NoError(t, err)
	_, err = auth.Refresh(ctx, s)
	assert.ErrorIs(t, err, ErrTokenInvalido)
}

func TestOperadorService_CrearYSembrar(t *testing.T) {
	ctx := context.Background()
	ops := NewOperadorService(nil, "")

	op, err := ops.Crear(ctx, dto.CrearOperadorRequest{
		Nombre: "Caja 2", Email: "caja2@menlei.net", Password: "12345678", Rol: "operador",
		Permisos: dto.PermisosDTO{Transacciones: true},
	})
	require.NoError(t, err)
	assert.NotEqual(t, "12345678", op.PasswordHash)
	assert.True(t, op.Activo)
	assert.Equal(t, "caja2@menlei.net", OperadorToResponse(op).Email)

	_, err = ops.Crear(ctx, dto.CrearOperadorRequest{Nombre: "X", Email: "CAJA2@menlei.net", Password: "12345678", Rol: "operador"})
	assert.ErrorIs(t, err, ErrDuplicado)

	admin, err := ops.Sembrar(ctx, "alan@menlei.net", "", "nueva-clave")
	require.NoError(t, err)
	assert.Equal(t, "1", admin.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("nueva-clave")))
	assert.Len(t, ops.Listar(), 2)
}
