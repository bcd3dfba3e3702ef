package kitsu

import "fmt"

type Anime struct {
	Media
	EpisodeCount   int
	EpisodeLength  int
	TotalLength    int
	NSFW           bool
	YouTubeVideoID string
}

// YouTubeURL is the trailer URL, or "" when the entry has none.
func (a *Anime) YouTubeURL() string {
	if a.YouTubeVideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + a.YouTubeVideoID
}

func (a *Anime) String() string {
	return fmt.Sprintf("Anime(%d %q)", a.ID, a.CanonicalTitle)
}

type animeAttributes struct {
	mediaAttributes
	EpisodeCount   int    `json:"episodeCount"`
	EpisodeLength  int    `json:"episodeLength"`
	TotalLength    int    `json:"totalLength"`
	NSFW           bool   `json:"nsfw"`
	YouTubeVideoID string `json:"youtubeVideoId"`
}

func decodeAnime(r resource) (*Anime, error) {
	var attrs animeAttributes
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &Anime{
		Media:          attrs.media(r.intID(), MediaAnime),
		EpisodeCount:   attrs.EpisodeCount,
		EpisodeLength:  attrs.EpisodeLength,
		TotalLength:    attrs.TotalLength,
		NSFW:           attrs.NSFW,
		YouTubeVideoID: attrs.YouTubeVideoID,
	}, nil
}
