// Package auth binds an HTTP caller to one tenant through an HS256 bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Auth interface {
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

var (
	ErrNoToken       = errors.New("bearer token required")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidTenant = errors.New("token has no tenant")
)

type tenantKey struct{}

// Claims carries the tenant the caller acts for.
type Claims struct {
	jwt.RegisteredClaims
	TenantID int64 `json:"tenant_id"`
}

type auth struct {
	secret []byte
}

func NewAuth(secret string) Auth {
	return &auth{secret: []byte(secret)}
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// получение арендатора из токена
		tenantID, err := a.getTenantID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// передаём управление хендлеру
		h.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
	}
}

func (a *auth) getTenantID(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return 0, ErrNoToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.TenantID <= 0 {
		return 0, ErrInvalidTenant
	}
	return claims.TenantID, nil
}

func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantFromContext returns the tenant put by the Middleware.
func TenantFromContext(ctx context.Context) (int64, bool) {
	tenantID, ok := ctx.Value(tenantKey{}).(int64)
	return tenantID, ok
}

// NewToken signs a token for the tenant. A zero ttl issues a token without expiry.
func NewToken(secret string, tenantID int64, ttl time.Duration) (string, error) {
	claims := Claims{TenantID: tenantID}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
