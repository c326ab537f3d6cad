package middleware

import (
	"strings"

	"zhiyi-cms/config"
	"zhiyi-cms/helper"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Claims mirrors the token issued by the auth service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware admits requests carrying a valid admin bearer token and
// exposes user_id, email and role on the gin context.
func AuthMiddleware(h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			abortUnauthorized(c, h, reason)
			return
		}

		claims, ok := parseClaims(raw)
		if !ok {
			abortUnauthorized(c, h, "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(h *helper.HTTPHelper, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			abortUnauthorized(c, h, "User role not found")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortUnauthorized(c, h, "Insufficient permissions")
	}
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header required"
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", "Bearer token required"
	}
	return token, ""
}

// parseClaims reads the secret at call time so tests and Load can swap it.
func parseClaims(raw string) (*Claims, bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return config.JWTSecret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

func abortUnauthorized(c *gin.Context, h *helper.HTTPHelper, message string) {
	h.SendUnauthorizedError(c, message, h.EmptyJsonMap())
	c.Abort()
}
