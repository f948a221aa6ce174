package middleware

import (
	"net/http"
	"slices"
	"strings"

	"casacambio/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"

	tokenAcceso = "access"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	OperadorID string   `json:"operador_id"`
	Email      string   `json:"email"`
	Rol        string   `json:"rol"`
	Permisos   []string `json:"permisos"`
	Tipo       string   `json:"tipo"`
	jwt.RegisteredClaims
}

// Tiene reports whether the token grants permiso.
func (c *JWTClaims) Tiene(permiso string) bool {
	return slices.Contains(c.Permisos, permiso)
}

// JWTAuth validates the Bearer token on every protected route. Refresh
// tokens are rejected here: they are only good for /auth/refresh.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.Tipo != tokenAcceso || claims.OperadorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequirePermiso rejects requests whose token lacks any of the given
// permission flags.
func RequirePermiso(permisos ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}
		for _, p := range permisos {
			if !claims.Tiene(p) {
				c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
				return
			}
		}
		c.Next()
	}
}

// GetClaims returns the typed claims set by JWTAuth, or nil on public routes.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
