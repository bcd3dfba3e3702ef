package kitsu

import "time"

// Character is a character entry. Role and MediaID are set only when the
// character was fetched through an anime or manga.
type Character struct {
	ID          int
	Name        string
	Slug        string
	Description string
	MALID       int
	Image       *Image
	Role        string
	MediaID     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Character) URL() string { return WebURL + "/characters/" + c.Slug }

type characterAttributes struct {
	CanonicalName string           `json:"canonicalName"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	MALID         int              `json:"malId"`
	Image         *imageAttributes `json:"image"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

func decodeCharacter(r resource) (*Character, error) {
	var attrs characterAttributes
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	name := attrs.CanonicalName
	if name == "" {
		name = attrs.Name
	}
	return &Character{
		ID:          r.intID(),
		Name:        name,
		Slug:        attrs.Slug,
		Description: attrs.Description,
		MALID:       attrs.MALID,
		Image:       attrs.Image.image(),
		CreatedAt:   parseTime(attrs.CreatedAt),
		UpdatedAt:   parseTime(attrs.UpdatedAt),
	}, nil
}

// decodeMediaCharacters joins mediaCharacters links with the characters
// sideloaded through include=character. Links whose character is missing
// from the included set are skipped.
func decodeMediaCharacters(doc *document, mediaID int) ([]*Character, error) {
	links, err := doc.resources()
	if err != nil {
		return nil, err
	}
	out := make([]*Character, 0, len(links))
	for i, link := range links {
		var attrs struct {
			Role string `json:"role"`
		}
		if err := link.decode(&attrs); err != nil {
			return nil, err
		}

		var (
			res resource
			ok  bool
		)
		if rel, has := link.Relationships["character"]; has && rel.Data != nil {
			res, ok = doc.included(rel.Data.Type, rel.Data.ID)
		} else if i < len(doc.Included) {
			res, ok = doc.Included[i], true
		}
		if !ok {
			continue
		}

		ch, err := decodeCharacter(res)
		if err != nil {
			return nil, err
		}
		ch.Role = attrs.Role
		ch.MediaID = mediaID
		out = append(out, ch)
	}
	return out, nil
}
