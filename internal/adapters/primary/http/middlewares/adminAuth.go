package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"

	// ctxKeySubject subject токена в gin.Context
	ctxKeySubject = "admin_subject"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNotAdmin     = errors.New("token has no admin role")
)

// AdminClaims стандартные claims и роль
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueAdminToken HS256-токен с role=admin
func IssueAdminToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleAdmin,
	})
	return token.SignedString(secret)
}

// ParseAdminToken проверяет подпись, срок и роль
func ParseAdminToken(tokenString string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, errNotAdmin
	}
	return claims, nil
}

// AdminAuth пропускает только запросы с валидным admin-токеном в Authorization: Bearer
func AdminAuth(secret []byte, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *AdminClaims
			claims, err = ParseAdminToken(tokenString, secret)
			if err == nil {
				c.Set(ctxKeySubject, claims.Subject)
				c.Next()
				return
			}
		}

		log.Warn("admin api unauthorized", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

// AdminSubject subject токена текущего запроса
func AdminSubject(c *gin.Context) string {
	return c.GetString(ctxKeySubject)
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}
