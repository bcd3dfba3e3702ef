package kitsu

import (
	"net/url"
	"strings"

	"github.com/adeilh/go-kitsu/cache"
)

// Cache keys follow {type}_{id} for entries, {type}_{query}_{limit} for
// searches and {type}_{id}_{subresource}[_{limit}] for sub-resources.
// The query is escaped so it never contains "_" and a search key cannot
// take the shape of a sub-resource key.

func searchKey(typ, query string, limit int) string {
	return cache.Key(typ, escapeQuery(query), limit)
}

// escapeQuery query-escapes q (spaces become "+") and then escapes "_".
func escapeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "_", "%5F")
}

func entryKey(typ string, id int) string { return cache.Key(typ, id) }

func subKey(ref MediaRef, sub string, limit ...int) string {
	parts := []any{string(ref.Type), ref.ID, sub}
	for _, l := range limit {
		parts = append(parts, l)
	}
	return cache.Key(parts...)
}

func userKey(idOrSlug string) string { return cache.Key("user", idOrSlug) }

func trendingKey(t MediaType) string { return cache.Key("trending", string(t)) }
