package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var (
	ErrBackend       = errors.New("backend error")
	ErrEmptyResponse = errors.New("empty response")
	ErrClientClosed  = errors.New("client closed")
)

type BackendError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend returned %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackend, e.Err}
}

func newBackendError(backend string, err error) error {
	if err == nil {
		return nil
	}

	var be *BackendError
	if errors.As(err, &be) {
		return err
	}

	return &BackendError{
		Backend:    backend,
		StatusCode: statusCode(err),
		Err:        err,
	}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var be *BackendError
	if errors.As(err, &be) && be.StatusCode != 0 {
		return be.StatusCode == http.StatusTooManyRequests || be.StatusCode >= http.StatusInternalServerError
	}
	return true
}
