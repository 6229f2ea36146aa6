package sankhya

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/iurnickita/sankhyagw/internal/model"
)

// expirySkew drops a cached token slightly before the ERP would reject it.
const expirySkew = 30 * time.Second

type cachedToken struct {
	token     string
	expiresAt time.Time
	// credentials the token was issued for; an edited contract invalidates the entry
	issuedFor model.Credentials
}

// TokenCache keeps one bearer token per tenant. Tokens that are JWTs expire at their exp
// claim, opaque tokens after ttl.
type TokenCache struct {
	provider TokenProvider
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[int64]cachedToken
}

func NewTokenCache(provider TokenProvider, ttl time.Duration) *TokenCache {
	return &TokenCache{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[int64]cachedToken),
	}
}

func (c *TokenCache) Authenticate(ctx context.Context, creds model.Credentials) (string, error) {
	token, _, err := c.AuthenticateCached(ctx, creds)
	return token, err
}

// AuthenticateCached returns the kept token of the tenant when it is still valid for creds,
// cached reports that no login happened.
func (c *TokenCache) AuthenticateCached(ctx context.Context, creds model.Credentials) (token string, cached bool, err error) {
	c.mu.Lock()
	entry, ok := c.entries[creds.TenantID]
	c.mu.Unlock()
	if ok && entry.issuedFor == creds && c.now().Before(entry.expiresAt) {
		return entry.token, true, nil
	}

	token, err = c.provider.Authenticate(ctx, creds)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	c.entries[creds.TenantID] = cachedToken{
		token:     token,
		expiresAt: c.expiry(token),
		issuedFor: creds,
	}
	c.mu.Unlock()
	return token, false, nil
}

// Invalidate forgets the token of the tenant, the next call logs in again.
func (c *TokenCache) Invalidate(tenantID int64) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
}

func (c *TokenCache) expiry(token string) time.Time {
	now := c.now()
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time.Add(-expirySkew)
	}
	return now.Add(c.ttl)
}
