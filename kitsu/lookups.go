package kitsu

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func (c *Client) SearchAnime(ctx context.Context, query string, limit int) ([]*Anime, error) {
	return search(ctx, c, string(MediaAnime), "text", query, limit, decodeAnime)
}

func (c *Client) SearchManga(ctx context.Context, query string, limit int) ([]*Manga, error) {
	return search(ctx, c, string(MediaManga), "text", query, limit, decodeManga)
}

// SearchCharacters matches characters by name. Results carry no Role or MediaID.
func (c *Client) SearchCharacters(ctx context.Context, query string, limit int) ([]*Character, error) {
	return search(ctx, c, "characters", "name", query, limit, decodeCharacter)
}

func search[T any](ctx context.Context, c *Client, typ, filter, query string, limit int, decode func(resource) (T, error)) ([]T, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidArgument)
	}
	limit = clampLimit(limit)
	return memoize(ctx, c, searchKey(typ, query, limit), c.expiry, func(ctx context.Context) ([]T, error) {
		doc, err := c.get(ctx, "/"+typ, map[string]string{
			"filter[" + filter + "]": query,
			"page[limit]":            strconv.Itoa(limit),
		})
		if err != nil {
			return nil, err
		}
		rs, err := doc.resources()
		if err != nil {
			return nil, err
		}
		return decodeAll(rs, decode)
	})
}

func (c *Client) Anime(ctx context.Context, id int) (*Anime, error) {
	return entry(ctx, c, string(MediaAnime), id, decodeAnime)
}

func (c *Client) Manga(ctx context.Context, id int) (*Manga, error) {
	return entry(ctx, c, string(MediaManga), id, decodeManga)
}

func (c *Client) Character(ctx context.Context, id int) (*Character, error) {
	return entry(ctx, c, "characters", id, decodeCharacter)
}

func entry[T any](ctx context.Context, c *Client, typ string, id int, decode func(resource) (T, error)) (T, error) {
	if id <= 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s id %d", ErrInvalidArgument, typ, id)
	}
	return memoize(ctx, c, entryKey(typ, id), c.expiry, func(ctx context.Context) (T, error) {
		var zero T
		doc, err := c.get(ctx, "/"+typ+"/"+strconv.Itoa(id), nil)
		if err != nil {
			return zero, err
		}
		rs, err := doc.resources()
		if err != nil {
			return zero, err
		}
		if len(rs) == 0 {
			return zero, fmt.Errorf("%w: %s %d", ErrNotFound, typ, id)
		}
		return decode(rs[0])
	})
}

// TrendingAnime returns the anime currently trending on Kitsu.
func (c *Client) TrendingAnime(ctx context.Context) ([]*Anime, error) {
	return trending(ctx, c, MediaAnime, decodeAnime)
}

// TrendingManga returns the manga currently trending on Kitsu.
func (c *Client) TrendingManga(ctx context.Context) ([]*Manga, error) {
	return trending(ctx, c, MediaManga, decodeManga)
}

func trending[T any](ctx context.Context, c *Client, t MediaType, decode func(resource) (T, error)) ([]T, error) {
	return memoize(ctx, c, trendingKey(t), c.expiry, func(ctx context.Context) ([]T, error) {
		doc, err := c.get(ctx, "/trending/"+string(t), nil)
		if err != nil {
			return nil, err
		}
		rs, err := doc.resources()
		if err != nil {
			return nil, err
		}
		return decodeAll(rs, decode)
	})
}

// StreamLinks lists the streaming services carrying an anime.
func (c *Client) StreamLinks(ctx context.Context, animeID int) ([]*StreamLink, error) {
	ref := MediaRef{Type: MediaAnime, ID: animeID}
	if err := ref.valid(); err != nil {
		return nil, err
	}
	return subresource(ctx, c, ref, "streaming-links", 0, c.expiry, decodeStreamLink)
}

// Characters lists up to limit characters of an anime or manga, with their
// role in it. The result is cached without expiry.
func (c *Client) Characters(ctx context.Context, ref MediaRef, limit int) ([]*Character, error) {
	if err := ref.valid(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	return memoize(ctx, c, subKey(ref, "characters", limit), 0, func(ctx context.Context) ([]*Character, error) {
		doc, err := c.get(ctx, fmt.Sprintf("/%s/%d/characters", ref.Type, ref.ID), map[string]string{
			"include":     "character",
			"page[limit]": strconv.Itoa(limit),
		})
		if err != nil {
			return nil, err
		}
		return decodeMediaCharacters(doc, ref.ID)
	})
}

// Categories lists the categories of an anime or manga. The result is
// cached without expiry.
func (c *Client) Categories(ctx context.Context, ref MediaRef) ([]*Category, error) {
	if err := ref.valid(); err != nil {
		return nil, err
	}
	return subresource(ctx, c, ref, "categories", 0, 0, decodeCategory)
}

func (c *Client) Reviews(ctx context.Context, ref MediaRef, limit int) ([]*Review, error) {
	if err := ref.valid(); err != nil {
		return nil, err
	}
	return subresource(ctx, c, ref, "reviews", clampLimit(limit), c.expiry, decodeReview(ref))
}

func (c *Client) Episodes(ctx context.Context, animeID, limit int) ([]*Episode, error) {
	ref := MediaRef{Type: MediaAnime, ID: animeID}
	if err := ref.valid(); err != nil {
		return nil, err
	}
	return subresource(ctx, c, ref, "episodes", clampLimit(limit), c.expiry, decodeEpisode)
}

func (c *Client) Chapters(ctx context.Context, mangaID, limit int) ([]*Chapter, error) {
	ref := MediaRef{Type: MediaManga, ID: mangaID}
	if err := ref.valid(); err != nil {
		return nil, err
	}
	return subresource(ctx, c, ref, "chapters", clampLimit(limit), c.expiry, decodeChapter)
}

// subresource fetches /{type}/{id}/{sub}. A zero limit sends no page size and
// leaves the limit out of the cache key.
func subresource[T any](ctx context.Context, c *Client, ref MediaRef, sub string, limit int, expiry time.Duration, decode func(resource) (T, error)) ([]T, error) {
	key := subKey(ref, sub)
	var query map[string]string
	if limit > 0 {
		key = subKey(ref, sub, limit)
		query = map[string]string{"page[limit]": strconv.Itoa(limit)}
	}
	return memoize(ctx, c, key, expiry, func(ctx context.Context) ([]T, error) {
		doc, err := c.get(ctx, fmt.Sprintf("/%s/%d/%s", ref.Type, ref.ID, sub), query)
		if err != nil {
			return nil, err
		}
		rs, err := doc.resources()
		if err != nil {
			return nil, err
		}
		return decodeAll(rs, decode)
	})
}
