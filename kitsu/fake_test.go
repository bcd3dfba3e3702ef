package kitsu

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/adeilh/go-kitsu/httpx"
)

// fakeKitsu serves a handful of fixtures shaped like Kitsu's JSON:API.
type fakeKitsu struct {
	mu     sync.Mutex
	hits   map[string]int
	auth   []string
	delay  time.Duration
	users  map[string]map[string]any
	status int
}

func newFakeKitsu(t *testing.T) (*fakeKitsu, *httpx.TestServer) {
	t.Helper()
	f := &fakeKitsu{
		hits: make(map[string]int),
		users: map[string]map[string]any{
			"1": userFixture(1, "vikhyat"),
		},
	}

	acceptJSONAPI := func(c httpx.Context) error {
		if c.Request().Header.Get("Accept") != httpx.MediaTypeJSONAPI {
			return httpx.HTTPError(httpx.StatusBadRequest, "unsupported accept header")
		}
		return nil
	}
	server := httpx.NewServer(httpx.WithValidators(acceptJSONAPI, f.record))
	server.RegisterRoutes(httpx.Routes(
		httpx.Route{Method: "GET", Path: "/anime", Handler: f.searchAnime},
		httpx.Route{Method: "GET", Path: "/anime/:id", Handler: f.anime},
		httpx.Route{Method: "GET", Path: "/manga", Handler: f.searchManga},
		httpx.Route{Method: "GET", Path: "/manga/:id", Handler: f.manga},
		httpx.Route{Method: "GET", Path: "/characters", Handler: f.searchCharacters},
		httpx.Route{Method: "GET", Path: "/characters/:id", Handler: f.character},
		httpx.Route{Method: "GET", Path: "/trending/:type", Handler: f.trending},
		httpx.Route{Method: "GET", Path: "/anime/:id/streaming-links", Handler: f.streamingLinks},
		httpx.Route{Method: "GET", Path: "/anime/:id/characters", Handler: f.mediaCharacters},
		httpx.Route{Method: "GET", Path: "/manga/:id/characters", Handler: f.mediaCharacters},
		httpx.Route{Method: "GET", Path: "/anime/:id/categories", Handler: f.categories},
		httpx.Route{Method: "GET", Path: "/manga/:id/categories", Handler: f.categories},
		httpx.Route{Method: "GET", Path: "/anime/:id/reviews", Handler: f.reviews},
		httpx.Route{Method: "GET", Path: "/manga/:id/reviews", Handler: f.reviews},
		httpx.Route{Method: "GET", Path: "/anime/:id/episodes", Handler: f.episodes},
		httpx.Route{Method: "GET", Path: "/manga/:id/chapters", Handler: f.chapters},
		httpx.Route{Method: "GET", Path: "/users", Handler: f.usersBySlug},
		httpx.Route{Method: "GET", Path: "/users/:id", Handler: f.user},
	))

	ts := httpx.NewServerTestServer(server)
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeKitsu) record(c httpx.Context) error {
	f.mu.Lock()
	f.hits[c.Request().URL.Path]++
	f.auth = append(f.auth, c.Request().Header.Get("Authorization"))
	delay, status := f.delay, f.status
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		return httpx.HTTPError(status, "forced failure")
	}
	return nil
}

func (f *fakeKitsu) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeKitsu) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func (f *fakeKitsu) setStatus(code int) {
	f.mu.Lock()
	f.status = code
	f.mu.Unlock()
}

func (f *fakeKitsu) addUser(id int, slug string) {
	f.mu.Lock()
	f.users[strconv.Itoa(id)] = userFixture(id, slug)
	f.mu.Unlock()
}

func write(c httpx.Context, data any, included ...any) error {
	body := map[string]any{"data": data}
	if len(included) > 0 {
		body["included"] = included
	}
	return httpx.WriteJSONAPI(c, httpx.StatusOK, body)
}

func notFound() error {
	return httpx.HTTPError(httpx.StatusNotFound, "The record identified by this ID could not be found")
}

func limitParam(c httpx.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page[limit]"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

func image(prefix string) map[string]any {
	return map[string]any{
		"tiny":     prefix + "/tiny.jpg",
		"small":    prefix + "/small.jpg",
		"medium":   prefix + "/medium.jpg",
		"large":    prefix + "/large.jpg",
		"original": prefix + "/original.jpg",
		"meta": map[string]any{
			"dimensions": map[string]any{
				"tiny": map[string]int{"width": 110, "height": 156},
			},
		},
	}
}

func animeFixture(id int, title string) map[string]any {
	return map[string]any{
		"id":   strconv.Itoa(id),
		"type": "anime",
		"attributes": map[string]any{
			"slug":           "anime-" + strconv.Itoa(id),
			"synopsis":       "Synopsis of " + title,
			"canonicalTitle": title,
			"titles":         map[string]string{"en": title, "en_jp": title + " (romaji)", "ja_jp": "日本語"},
			"averageRating":  "82.14",
			"ratingRank":     12,
			"popularityRank": 30,
			"ageRating":      "R",
			"subtype":        "TV",
			"status":         "finished",
			"posterImage":    image("https://media.kitsu.io/anime/poster_images/" + strconv.Itoa(id)),
			"coverImage":     nil,
			"createdAt":      "2013-02-20T16:00:13.609Z",
			"updatedAt":      "2024-05-01T00:00:00.000Z",
			"startDate":      "1998-04-03",
			"endDate":        "1999-04-24",
			"episodeCount":   26,
			"episodeLength":  25,
			"totalLength":    650,
			"nsfw":           false,
			"youtubeVideoId": "qig4KOK2R2g",
		},
	}
}

func mangaFixture(id int, title string) map[string]any {
	return map[string]any{
		"id":   strconv.Itoa(id),
		"type": "manga",
		"attributes": map[string]any{
			"slug":           "manga-" + strconv.Itoa(id),
			"canonicalTitle": title,
			"titles":         map[string]string{"en": title},
			"averageRating":  nil,
			"subtype":        "manga",
			"status":         "current",
			"startDate":      "2001-07-12",
			"endDate":        nil,
			"chapterCount":   nil,
			"volumeCount":    27,
			"serialization":  "Monthly Shounen Gangan",
		},
	}
}

func characterFixture(id int, name string) map[string]any {
	return map[string]any{
		"id":   strconv.Itoa(id),
		"type": "characters",
		"attributes": map[string]any{
			"canonicalName": name,
			"slug":          "character-" + strconv.Itoa(id),
			"description":   name + " is a character.",
			"malId":         id * 10,
			"image":         map[string]any{"original": "https://media.kitsu.io/characters/" + strconv.Itoa(id) + ".jpg"},
			"createdAt":     "2013-02-20T16:00:13.609Z",
			"updatedAt":     nil,
		},
	}
}

func userFixture(id int, slug string) map[string]any {
	return map[string]any{
		"id":   strconv.Itoa(id),
		"type": "users",
		"attributes": map[string]any{
			"name":                slug,
			"slug":                slug,
			"about":               "hello",
			"location":            "Earth",
			"waifuOrHusbando":     "Waifu",
			"gender":              "",
			"birthday":            "1990-01-02",
			"followersCount":      100,
			"followingCount":      5,
			"commentsCount":       3,
			"favoritesCount":      7,
			"postsCount":          11,
			"mediaReactionsCount": 2,
			"proTier":             "patron",
			"avatar":              image("https://media.kitsu.io/users/avatars/" + strconv.Itoa(id)),
			"coverImage":          nil,
			"createdAt":           "2013-10-22T15:03:04.000Z",
		},
	}
}

func (f *fakeKitsu) searchAnime(c httpx.Context) error {
	q := c.QueryParam("filter[text]")
	if q == "nothing at all" {
		return write(c, []any{})
	}
	out := []any{}
	for i := 1; i <= limitParam(c); i++ {
		out = append(out, animeFixture(i, q+" "+strconv.Itoa(i)))
	}
	return write(c, out)
}

func (f *fakeKitsu) anime(c httpx.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	if id > 1000 {
		return notFound()
	}
	return write(c, animeFixture(id, "Cowboy Bebop"))
}

func (f *fakeKitsu) searchManga(c httpx.Context) error {
	return write(c, []any{mangaFixture(1, c.QueryParam("filter[text]"))})
}

func (f *fakeKitsu) manga(c httpx.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	return write(c, mangaFixture(id, "Fullmetal Alchemist"))
}

func (f *fakeKitsu) searchCharacters(c httpx.Context) error {
	return write(c, []any{characterFixture(1, c.QueryParam("filter[name]"))})
}

func (f *fakeKitsu) character(c httpx.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	return write(c, characterFixture(id, "Spike Spiegel"))
}

func (f *fakeKitsu) trending(c httpx.Context) error {
	if c.Param("type") == "manga" {
		return write(c, []any{mangaFixture(1, "One"), mangaFixture(2, "Two")})
	}
	return write(c, []any{animeFixture(1, "One"), animeFixture(2, "Two"), animeFixture(3, "Three")})
}

func (f *fakeKitsu) streamingLinks(c httpx.Context) error {
	return write(c, []any{map[string]any{
		"id":   "7",
		"type": "streamingLinks",
		"attributes": map[string]any{
			"url":  "https://www.crunchyroll.com/cowboy-bebop",
			"subs": []string{"en"},
			"dubs": []string{"ja"},
		},
	}})
}

func (f *fakeKitsu) mediaCharacters(c httpx.Context) error {
	if c.QueryParam("include") != "character" {
		return httpx.HTTPError(httpx.StatusBadRequest, "include=character required")
	}
	links := []any{}
	included := []any{}
	names := []string{"Spike Spiegel", "Faye Valentine", "Jet Black"}
	roles := []string{"main", "main", "supporting"}
	n := limitParam(c)
	if n > len(names) {
		n = len(names)
	}
	// Included characters come back in reverse order to prove links are
	// joined by relationship, not by position.
	for i := n - 1; i >= 0; i-- {
		included = append(included, characterFixture(i+1, names[i]))
	}
	for i := 0; i < n; i++ {
		links = append(links, map[string]any{
			"id":         strconv.Itoa(100 + i),
			"type":       "mediaCharacters",
			"attributes": map[string]any{"role": roles[i]},
			"relationships": map[string]any{
				"character": map[string]any{"data": map[string]string{"type": "characters", "id": strconv.Itoa(i + 1)}},
			},
		})
	}
	return write(c, links, included...)
}

func (f *fakeKitsu) categories(c httpx.Context) error {
	return write(c, []any{
		map[string]any{"id": "1", "type": "categories", "attributes": map[string]any{
			"title": "Space", "description": "Set in space.", "slug": "space", "nsfw": false,
			"createdAt": "2017-05-31T06:38:29.000Z", "updatedAt": "2017-05-31T06:38:29.000Z",
		}},
		map[string]any{"id": "2", "type": "categories", "attributes": map[string]any{
			"title": "Bounty Hunter", "slug": "bounty-hunter",
		}},
	})
}

func (f *fakeKitsu) reviews(c httpx.Context) error {
	out := []any{}
	for i := 1; i <= limitParam(c) && i <= 2; i++ {
		out = append(out, map[string]any{"id": strconv.Itoa(i), "type": "reviews", "attributes": map[string]any{
			"content": "Great show", "contentFormatted": "<p>Great show</p>", "likesCount": 4,
			"progress": "26", "rating": 10, "source": "", "spoiler": i == 2,
		}})
	}
	return write(c, out)
}

func (f *fakeKitsu) episodes(c httpx.Context) error {
	return write(c, []any{map[string]any{"id": "11", "type": "episodes", "attributes": map[string]any{
		"number": 1, "seasonNumber": 1, "canonicalTitle": "Asteroid Blues", "synopsis": "Spike and Jet...",
		"length": 24, "airdate": "1998-10-24",
	}}})
}

func (f *fakeKitsu) chapters(c httpx.Context) error {
	return write(c, []any{map[string]any{"id": "21", "type": "chapters", "attributes": map[string]any{
		"number": 1, "volumeNumber": 1, "canonicalTitle": "The Two Alchemists",
		"length": 50, "published": "2001-07-12",
	}}})
}

func (f *fakeKitsu) usersBySlug(c httpx.Context) error {
	slug := c.QueryParam("filter[slug]")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u["attributes"].(map[string]any)["slug"] == slug {
			return write(c, []any{u})
		}
	}
	return write(c, []any{})
}

func (f *fakeKitsu) user(c httpx.Context) error {
	f.mu.Lock()
	u, ok := f.users[c.Param("id")]
	f.mu.Unlock()
	if !ok {
		return notFound()
	}
	return write(c, u)
}
