package sankhya

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/iurnickita/sankhyagw/internal/apperr"
)

// ResponseError is a non-2xx answer of the ERP. It is never retried.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("sankhya response status: %d", e.StatusCode)
}

// SubmissionError is an explicit rejection reported by the ERP.
type SubmissionError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string

	// Text is the human readable message assembled from the fields above.
	Text string
}

func (e *SubmissionError) Error() string {
	return e.Text
}

func (e *SubmissionError) Unwrap() error {
	return apperr.ErrSubmission
}

// LoginError is a login answer without a usable token: a non-2xx status or a body
// carrying no token. The reason comes from the ERP and is never matched for "timeout".
type LoginError struct {
	StatusCode int
	Reason     string
}

func (e *LoginError) Error() string {
	if e.StatusCode >= 400 {
		return fmt.Sprintf("login status %d: %s", e.StatusCode, e.Reason)
	}
	return "token not returned by login: " + e.Reason
}

func (e *LoginError) Unwrap() error {
	return apperr.ErrAuth
}

// IsTransient reports whether err is a connection reset or a timeout. Only these
// failures are retried by the Executor. ERP answers (*LoginError, *ResponseError)
// are never transient whatever their text says.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var loginErr *LoginError
	var respErr *ResponseError
	if errors.As(err, &loginErr) || errors.As(err, &respErr) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
