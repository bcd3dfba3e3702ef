package kitsu

import "time"

type Category struct {
	ID          int
	Title       string
	Description string
	Slug        string
	NSFW        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func decodeCategory(r resource) (*Category, error) {
	var attrs struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Slug        string `json:"slug"`
		NSFW        bool   `json:"nsfw"`
		CreatedAt   string `json:"createdAt"`
		UpdatedAt   string `json:"updatedAt"`
	}
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &Category{
		ID:          r.intID(),
		Title:       attrs.Title,
		Description: attrs.Description,
		Slug:        attrs.Slug,
		NSFW:        attrs.NSFW,
		CreatedAt:   parseTime(attrs.CreatedAt),
		UpdatedAt:   parseTime(attrs.UpdatedAt),
	}, nil
}

type Review struct {
	ID               int
	MediaID          int
	MediaType        MediaType
	Content          string
	ContentFormatted string
	LikesCount       int
	Progress         string
	Rating           int
	Source           string
	Spoiler          bool
}

func decodeReview(ref MediaRef) func(resource) (*Review, error) {
	return func(r resource) (*Review, error) {
		var attrs struct {
			Content          string `json:"content"`
			ContentFormatted string `json:"contentFormatted"`
			LikesCount       int    `json:"likesCount"`
			Progress         string `json:"progress"`
			Rating           int    `json:"rating"`
			Source           string `json:"source"`
			Spoiler          bool   `json:"spoiler"`
		}
		if err := r.decode(&attrs); err != nil {
			return nil, err
		}
		return &Review{
			ID:               r.intID(),
			MediaID:          ref.ID,
			MediaType:        ref.Type,
			Content:          attrs.Content,
			ContentFormatted: attrs.ContentFormatted,
			LikesCount:       attrs.LikesCount,
			Progress:         attrs.Progress,
			Rating:           attrs.Rating,
			Source:           attrs.Source,
			Spoiler:          attrs.Spoiler,
		}, nil
	}
}

// StreamLink is where an anime can be watched.
type StreamLink struct {
	ID   int
	URL  string
	Subs []string
	Dubs []string
}

func decodeStreamLink(r resource) (*StreamLink, error) {
	var attrs struct {
		URL  string   `json:"url"`
		Subs []string `json:"subs"`
		Dubs []string `json:"dubs"`
	}
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &StreamLink{ID: r.intID(), URL: attrs.URL, Subs: attrs.Subs, Dubs: attrs.Dubs}, nil
}

type Episode struct {
	ID             int
	Number         int
	SeasonNumber   int
	CanonicalTitle string
	Synopsis       string
	Length         int
	AirDate        time.Time
}

func decodeEpisode(r resource) (*Episode, error) {
	var attrs struct {
		Number         int    `json:"number"`
		SeasonNumber   int    `json:"seasonNumber"`
		CanonicalTitle string `json:"canonicalTitle"`
		Synopsis       string `json:"synopsis"`
		Length         int    `json:"length"`
		AirDate        string `json:"airdate"`
	}
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &Episode{
		ID:             r.intID(),
		Number:         attrs.Number,
		SeasonNumber:   attrs.SeasonNumber,
		CanonicalTitle: attrs.CanonicalTitle,
		Synopsis:       attrs.Synopsis,
		Length:         attrs.Length,
		AirDate:        parseTime(attrs.AirDate),
	}, nil
}

type Chapter struct {
	ID             int
	Number         int
	VolumeNumber   int
	CanonicalTitle string
	Synopsis       string
	Length         int
	Published      time.Time
}

func decodeChapter(r resource) (*Chapter, error) {
	var attrs struct {
		Number         int    `json:"number"`
		VolumeNumber   int    `json:"volumeNumber"`
		CanonicalTitle string `json:"canonicalTitle"`
		Synopsis       string `json:"synopsis"`
		Length         int    `json:"length"`
		Published      string `json:"published"`
	}
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &Chapter{
		ID:             r.intID(),
		Number:         attrs.Number,
		VolumeNumber:   attrs.VolumeNumber,
		CanonicalTitle: attrs.CanonicalTitle,
		Synopsis:       attrs.Synopsis,
		Length:         attrs.Length,
		Published:      parseTime(attrs.Published),
	}, nil
}
