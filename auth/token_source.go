// Package auth supplies bearer tokens for authenticated Kitsu requests.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoCredentials = errors.New("auth: username and password are required")
	ErrEmptyToken    = errors.New("auth: token endpoint returned no access token")
)

// TokenSource yields the bearer token to attach to a request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Invalidator is implemented by sources that memoize tokens and can be told
// to forget them, for example after the API answers 401.
type Invalidator interface {
	Invalidate()
}
