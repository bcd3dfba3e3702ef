package kitsu

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// User looks a user up by numeric id or by slug. A user that does not
// exist is remembered like any other result, so asking again before the
// entry expires returns ErrNotFound without a request. Use RefreshUser to
// retry early.
func (c *Client) User(ctx context.Context, idOrSlug string) (*User, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, fmt.Errorf("%w: empty user id or slug", ErrInvalidArgument)
	}
	u, err := memoize(ctx, c, userKey(idOrSlug), c.expiry, func(ctx context.Context) (*User, error) {
		return c.fetchUser(ctx, idOrSlug)
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, idOrSlug)
	}
	return u, nil
}

// RefreshUser drops whatever is cached for idOrSlug, including a remembered
// miss, and looks the user up again.
func (c *Client) RefreshUser(ctx context.Context, idOrSlug string) (*User, error) {
	c.cache.Remove(userKey(strings.TrimSpace(idOrSlug)))
	return c.User(ctx, idOrSlug)
}

// fetchUser returns a nil user and nil error when Kitsu has no such user.
func (c *Client) fetchUser(ctx context.Context, idOrSlug string) (*User, error) {
	var (
		doc *document
		err error
	)
	if id, convErr := strconv.Atoi(idOrSlug); convErr == nil {
		doc, err = c.get(ctx, "/users/"+strconv.Itoa(id), nil)
	} else {
		doc, err = c.get(ctx, "/users", map[string]string{"filter[slug]": idOrSlug})
	}
	if errors.Is(err, ErrNotFound) {
		c.log.Debug("caching missing user", "user", idOrSlug)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rs, err := doc.resources()
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		c.log.Debug("caching missing user", "user", idOrSlug)
		return nil, nil
	}
	return decodeUser(rs[0])
}
