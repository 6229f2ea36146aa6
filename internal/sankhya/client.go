package sankhya

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iurnickita/sankhyagw/internal/sankhya/config"
)

// Client submits documents to the ERP of a tenant.
type Client struct {
	executor *Executor
	zaplog   *zap.Logger
}

func NewClient(cfg config.Config, resolver CredentialResolver, zaplog *zap.Logger) *Client {
	var tokens TokenProvider = NewTokenProvider(cfg.LoginTimeout, zaplog)
	if cfg.TokenCache {
		tokens = NewTokenCache(tokens, cfg.TokenTTL)
	}
	executor := NewExecutor(resolver, tokens, cfg.RequestTimeout, cfg.MaxAttempts, FixedBackoff(cfg.RetryDelay), zaplog)
	return &Client{executor: executor, zaplog: zaplog}
}

// CreateOrder posts the order and returns the ERP order number. An empty number with a nil
// error means the ERP accepted the order without reporting its identifier.
func (c *Client) CreateOrder(ctx context.Context, tenantID int64, payload OrderPayload) (string, error) {
	body, err := c.executor.Execute(ctx, tenantID, OrderEndpoint, http.MethodPost, payload)
	if err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return "", SubmissionErrorFromResponse(respErr)
		}
		return "", err
	}

	orderID, found, err := NormalizeOrderResponse(body)
	if err != nil {
		return "", err
	}
	if !found {
		c.zaplog.Warn("order accepted without identifier",
			zap.Int64("tenant", tenantID),
			zap.ByteString("response", body),
		)
	}
	return orderID, nil
}
