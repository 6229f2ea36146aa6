package sankhya

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
)

const loginPath = "/login"

// TokenProvider exchanges tenant credentials for a bearer token.
type TokenProvider interface {
	Authenticate(ctx context.Context, creds model.Credentials) (string, error)
}

// JSON ответ login
type loginAnswer struct {
	BearerToken string          `json:"bearerToken"`
	Token       string          `json:"token"`
	Error       json.RawMessage `json:"error"`
}

type loginClient struct {
	client *resty.Client
	zaplog *zap.Logger
}

// NewTokenProvider logs in on every call. Wrap it with NewTokenCache to reuse tokens.
func NewTokenProvider(timeout time.Duration, zaplog *zap.Logger) TokenProvider {
	return newLoginClient(resty.New(), timeout, zaplog)
}

func newLoginClient(client *resty.Client, timeout time.Duration, zaplog *zap.Logger) *loginClient {
	client.SetTimeout(timeout).SetLogger(zaplog.Sugar())
	return &loginClient{client: client, zaplog: zaplog}
}

func (c *loginClient) Authenticate(ctx context.Context, creds model.Credentials) (string, error) {
	c.zaplog.Debug("requesting sankhya token", zap.Int64("tenant", creds.TenantID))

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"token":    creds.Token,
			"appkey":   creds.AppKey,
			"username": creds.Username,
			"password": creds.Password,
		}).
		Execute(http.MethodPost, creds.BaseURL+loginPath)
	if err != nil {
		return "", fmt.Errorf("%w: login request: %w", apperr.ErrAuth, err)
	}

	var answer loginAnswer
	// a non-JSON body leaves the answer empty and is reported below
	_ = json.Unmarshal(resp.Body(), &answer)

	if resp.IsError() {
		reason := errorText(answer.Error)
		if reason == "" {
			reason = http.StatusText(resp.StatusCode())
		}
		return "", &LoginError{StatusCode: resp.StatusCode(), Reason: reason}
	}

	token := answer.BearerToken
	if token == "" {
		token = answer.Token
	}
	if token == "" {
		return "", &LoginError{StatusCode: resp.StatusCode(), Reason: truncate(resp.Body(), 512)}
	}

	c.zaplog.Debug("sankhya token issued", zap.Int64("tenant", creds.TenantID))
	return token, nil
}

// errorText renders an "error" field that may be a string or an object.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Details != "" {
			return obj.Details
		}
	}
	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
