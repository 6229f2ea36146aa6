package sankhya

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iurnickita/sankhyagw/internal/apperr"
	"github.com/iurnickita/sankhyagw/internal/model"
)

func testCredentials(baseURL string) model.Credentials {
	return model.Credentials{
		TenantID: 42,
		Token:    "tok",
		AppKey:   "app",
		Username: "user",
		Password: "pass",
		BaseURL:  baseURL,
	}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantErr   string
	}{
		{name: "bearerToken field", status: http.StatusOK, body: `{"bearerToken":"abc"}`, wantToken: "abc"},
		{name: "token field", status: http.StatusOK, body: `{"token":"xyz"}`, wantToken: "xyz"},
		{name: "bearerToken wins", status: http.StatusOK, body: `{"bearerToken":"abc","token":"xyz"}`, wantToken: "abc"},
		{name: "no token", status: http.StatusOK, body: `{"status":"ok"}`, wantErr: "token not returned"},
		{name: "rejected with error field", status: http.StatusUnauthorized, body: `{"error":"invalid appkey"}`, wantErr: "invalid appkey"},
		{name: "rejected without body", status: http.StatusForbidden, body: ``, wantErr: "login status 403"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, loginPath, r.URL.Path)
				assert.Equal(t, "tok", r.Header.Get("token"))
				assert.Equal(t, "app", r.Header.Get("appkey"))
				assert.Equal(t, "user", r.Header.Get("username"))
				assert.Equal(t, "pass", r.Header.Get("password"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			provider := NewTokenProvider(time.Second, zaptest.NewLogger(t))
			token, err := provider.Authenticate(context.Background(), testCredentials(srv.URL))
			if tt.wantErr != "" {
				require.ErrorIs(t, err, apperr.ErrAuth)
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAuthenticateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	provider := NewTokenProvider(50*time.Millisecond, zaptest.NewLogger(t))
	_, err := provider.Authenticate(context.Background(), testCredentials(srv.URL))

	require.ErrorIs(t, err, apperr.ErrAuth)
	require.True(t, IsTransient(err))
}
