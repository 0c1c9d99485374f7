package ai

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind is the closed set of completion failures the chat client reacts to.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindQuota
	KindUnauthorized
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindUnauthorized:
		return "unauthorized"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

type CompletionError struct {
	Kind ErrorKind
	Err  error
}

func (e *CompletionError) Error() string {
	return e.Err.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, KindOther for anything unclassified.
func KindOf(err error) ErrorKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindOther
}

func classify(err error) *CompletionError {
	return &CompletionError{Kind: kindFor(err), Err: err}
}

func kindFor(err error) ErrorKind {
	switch statusCode(err) {
	case http.StatusTooManyRequests:
		return KindQuota
	case http.StatusUnauthorized:
		return KindUnauthorized
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
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
