package service

import (
	"context"
	"time"

	"casacambio/internal/config"
	"casacambio/internal/dto"
	"casacambio/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenAcceso  = "access"
	tokenRefresh = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	operadores *OperadorService
	cfg        *config.Config
}

func NewAuthService(operadores *OperadorService, cfg *config.Config) AuthService {
	return &authService{operadores: operadores, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, ok := s.operadores.PorEmail(req.Email)
	if !ok || !op.Activo || op.PasswordHash == "" {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}
	return s.emitir(op)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != tokenRefresh {
		return nil, ErrTokenInvalido
	}
	id, ok := claims["operador_id"].(string)
	if !ok {
		return nil, ErrTokenInvalido
	}

	// Permissions are re-read so revocations apply on the next refresh.
	op, err := s.operadores.Obtener(id)
	if err != nil || !op.Activo {
		return nil, ErrTokenInvalido
	}
	return s.emitir(op)
}

func (s *authService) emitir(op model.Operador) (*dto.LoginResponse, error) {
	access, err := s.generateToken(op, tokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(op, tokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Operador:     OperadorToResponse(op),
	}, nil
}

func (s *authService) generateToken(op model.Operador, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"operador_id": op.ID,
		"email":       op.Email,
		"rol":         op.Rol,
		"permisos":    op.Permisos.Lista(),
		"tipo":        tipo,
		"exp":         now.Add(duration).Unix(),
		"iat":         now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
