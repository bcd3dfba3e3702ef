package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrBadRequest   = errors.New("httpx: bad request")
	ErrUnauthorized = errors.New("httpx: unauthorized")
	ErrNotFound     = errors.New("httpx: not found")
	ErrRateLimited  = errors.New("httpx: rate limited")
)

// APIError is one member of a JSON:API "errors" array.
type APIError struct {
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
	Status string `json:"status,omitempty"`
}

// StatusError is returned for any response with a 4xx or 5xx status.
type StatusError struct {
	Status int
	Method string
	URL    string
	Errors []APIError
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		msg = first.Title
		if first.Detail != "" {
			msg = first.Detail
		}
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("http %d: %s %s: %s", e.Status, e.Method, e.URL, msg)
}

// Is lets callers match a StatusError against the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == StatusBadRequest
	case ErrUnauthorized:
		return e.Status == StatusUnauthorized
	case ErrNotFound:
		return e.Status == StatusNotFound
	case ErrRateLimited:
		return e.Status == StatusTooManyRequests
	}
	return false
}

func newStatusError(resp *resty.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode(), Body: resp.String()}
	if resp.Request != nil {
		se.Method = resp.Request.Method
		se.URL = resp.Request.URL
	}
	var doc struct {
		Errors []APIError `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &doc); err == nil {
		se.Errors = doc.Errors
	}
	return se
}
