package kitsu

import (
	"fmt"
	"strings"
	"time"
)

// WebURL is the public site entity URLs point at.
const WebURL = "https://kitsu.io"

// MediaType selects between the two media collections.
type MediaType string

const (
	MediaAnime MediaType = "anime"
	MediaManga MediaType = "manga"
)

func (t MediaType) valid() error {
	switch t {
	case MediaAnime, MediaManga:
		return nil
	}
	return fmt.Errorf("%w: media type %q", ErrInvalidArgument, string(t))
}

// ParseMediaType accepts "anime" or "manga" in any case.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.valid()
}

// MediaRef identifies a media entry without holding its attributes. Use it
// to fetch sub-resources of an entry you only know by id.
type MediaRef struct {
	Type MediaType
	ID   int
}

func (r MediaRef) valid() error {
	if err := r.Type.valid(); err != nil {
		return err
	}
	if r.ID <= 0 {
		return fmt.Errorf("%w: media id %d", ErrInvalidArgument, r.ID)
	}
	return nil
}

type Titles struct {
	En   string
	EnJP string
	JaJP string
}

// Romaji is the romanized Japanese title.
func (t Titles) Romaji() string { return t.EnJP }

type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image lists the URLs of an image at each size Kitsu renders.
type Image struct {
	Tiny       string
	Small      string
	Medium     string
	Large      string
	Original   string
	Dimensions map[string]Dimension
}

type imageAttributes struct {
	Tiny     string `json:"tiny"`
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Original string `json:"original"`
	Meta     struct {
		Dimensions map[string]Dimension `json:"dimensions"`
	} `json:"meta"`
}

func (a *imageAttributes) image() *Image {
	if a == nil {
		return nil
	}
	return &Image{
		Tiny:       a.Tiny,
		Small:      a.Small,
		Medium:     a.Medium,
		Large:      a.Large,
		Original:   a.Original,
		Dimensions: a.Meta.Dimensions,
	}
}

// Media holds the attributes anime and manga share.
type Media struct {
	ID             int
	Type           MediaType
	Slug           string
	Synopsis       string
	CanonicalTitle string
	Titles         Titles
	AverageRating  float64
	RatingRank     int
	PopularityRank int
	AgeRating      string
	Subtype        string
	Status         string
	PosterImage    *Image
	CoverImage     *Image
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartDate      time.Time
	EndDate        time.Time
}

// URL links to the entry on the Kitsu website.
func (m Media) URL() string {
	return fmt.Sprintf("%s/%s/%s", WebURL, m.Type, m.Slug)
}

func (m Media) Ref() MediaRef { return MediaRef{Type: m.Type, ID: m.ID} }

type mediaAttributes struct {
	Slug           string            `json:"slug"`
	Synopsis       string            `json:"synopsis"`
	CanonicalTitle string            `json:"canonicalTitle"`
	Titles         map[string]string `json:"titles"`
	AverageRating  number            `json:"averageRating"`
	RatingRank     int               `json:"ratingRank"`
	PopularityRank int               `json:"popularityRank"`
	AgeRating      string            `json:"ageRating"`
	Subtype        string            `json:"subtype"`
	Status         string            `json:"status"`
	PosterImage    *imageAttributes  `json:"posterImage"`
	CoverImage     *imageAttributes  `json:"coverImage"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
}

func (a mediaAttributes) media(id int, typ MediaType) Media {
	return Media{
		ID:             id,
		Type:           typ,
		Slug:           a.Slug,
		Synopsis:       a.Synopsis,
		CanonicalTitle: a.CanonicalTitle,
		Titles: Titles{
			En:   a.Titles["en"],
			EnJP: a.Titles["en_jp"],
			JaJP: a.Titles["ja_jp"],
		},
		AverageRating:  float64(a.AverageRating),
		RatingRank:     a.RatingRank,
		PopularityRank: a.PopularityRank,
		AgeRating:      a.AgeRating,
		Subtype:        a.Subtype,
		Status:         a.Status,
		PosterImage:    a.PosterImage.image(),
		CoverImage:     a.CoverImage.image(),
		CreatedAt:      parseTime(a.CreatedAt),
		UpdatedAt:      parseTime(a.UpdatedAt),
		StartDate:      parseTime(a.StartDate),
		EndDate:        parseTime(a.EndDate),
	}
}
