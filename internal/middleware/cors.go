package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows every origin outside production. In production only the
// comma-separated allowedOrigins are accepted; an empty list denies all.
func CORS(production bool, allowedOrigins string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if production {
		cfg.AllowOrigins = splitAndTrim(allowedOrigins)
		if len(cfg.AllowOrigins) == 0 {
			cfg.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	cfg.AddAllowHeaders("Authorization", RequestIDHeader)
	cfg.AddExposeHeaders(RequestIDHeader, "Content-Disposition")
	return cors.New(cfg)
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
