package sankhya

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
)

// CredentialResolver loads the ERP credentials of a tenant.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID int64) (model.Credentials, error)
}

// cachingProvider is implemented by token providers that keep tokens between calls.
type cachingProvider interface {
	TokenProvider
	// AuthenticateCached also reports whether the token was kept from an earlier login.
	AuthenticateCached(ctx context.Context, creds model.Credentials) (token string, cached bool, err error)
	Invalidate(tenantID int64)
}

// Executor sends authenticated requests to the ERP of a tenant and retries
// connection resets and timeouts.
type Executor struct {
	resolver    CredentialResolver
	tokens      TokenProvider
	client      *resty.Client
	backoff     Backoff
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	zaplog      *zap.Logger
}

func NewExecutor(resolver CredentialResolver, tokens TokenProvider, timeout time.Duration,
	maxAttempts int, backoff Backoff, zaplog *zap.Logger) *Executor {
	return newExecutor(resty.New(), resolver, tokens, timeout, maxAttempts, backoff, zaplog)
}

func newExecutor(client *resty.Client, resolver CredentialResolver, tokens TokenProvider, timeout time.Duration,
	maxAttempts int, backoff Backoff, zaplog *zap.Logger) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	client.SetTimeout(timeout).SetLogger(zaplog.Sugar())
	return &Executor{
		resolver:    resolver,
		tokens:      tokens,
		client:      client,
		backoff:     backoff,
		maxAttempts: maxAttempts,
		sleep:       sleepOrDone,
		zaplog:      zaplog,
	}
}

// Execute returns the raw body of a 2xx answer. Every attempt resolves the credentials
// and authenticates again. A non-2xx answer is returned as *ResponseError.
func (e *Executor) Execute(ctx context.Context, tenantID int64, endpoint string, method string, body any) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		respBody, err := e.attempt(ctx, tenantID, endpoint, method, body, attempt)
		if err == nil {
			return respBody, nil
		}

		var respErr *ResponseError
		if errors.As(err, &respErr) || errors.Is(err, apperr.ErrConfiguration) || !IsTransient(err) {
			return nil, err
		}
		if attempt >= e.maxAttempts {
			return nil, fmt.Errorf("%w: %s %s failed after %d attempts: %w",
				apperr.ErrTransient, method, endpoint, attempt, err)
		}

		delay := e.backoff.Delay(attempt + 1)
		e.zaplog.Info("retrying sankhya request",
			zap.Int64("tenant", tenantID),
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return nil, fmt.Errorf("%w: %s %s interrupted after %d attempts: %w: %w",
				apperr.ErrTransient, method, endpoint, attempt, sleepErr, err)
		}
	}
}

// attempt is one resolve, authenticate and send cycle. A cached token the ERP answers 401 to
// is dropped and replaced by a fresh login within the same attempt.
func (e *Executor) attempt(ctx context.Context, tenantID int64, endpoint string, method string, body any, attempt int) ([]byte, error) {
	creds, err := e.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	token, cached, err := e.authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	url := creds.BaseURL + endpoint
	for {
		e.zaplog.Info("sankhya request",
			zap.Int64("tenant", tenantID),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
		)

		req := e.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json")
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, url)
		if err != nil {
			e.zaplog.Warn("sankhya request failed",
				zap.Int64("tenant", tenantID),
				zap.Int("attempt", attempt),
				zap.Bool("transient", IsTransient(err)),
				zap.Error(err),
			)
			return nil, err
		}
		if !resp.IsError() {
			return resp.Body(), nil
		}

		if resp.StatusCode() == http.StatusUnauthorized {
			if cache, ok := e.tokens.(cachingProvider); ok {
				cache.Invalidate(tenantID)
				if cached {
					e.zaplog.Info("cached sankhya token rejected, logging in again",
						zap.Int64("tenant", tenantID),
						zap.Int("attempt", attempt),
					)
					if token, err = cache.Authenticate(ctx, creds); err != nil {
						return nil, err
					}
					cached = false
					continue
				}
			}
		}
		return nil, &ResponseError{StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
}

func (e *Executor) authenticate(ctx context.Context, creds model.Credentials) (string, bool, error) {
	if cache, ok := e.tokens.(cachingProvider); ok {
		return cache.AuthenticateCached(ctx, creds)
	}
	token, err := e.tokens.Authenticate(ctx, creds)
	return token, false, err
}
