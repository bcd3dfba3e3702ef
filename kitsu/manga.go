package kitsu

import "fmt"

type Manga struct {
	Media
	ChapterCount  int
	VolumeCount   int
	Serialization string
}

func (m *Manga) String() string {
	return fmt.Sprintf("Manga(%d %q)", m.ID, m.CanonicalTitle)
}

type mangaAttributes struct {
	mediaAttributes
	ChapterCount  int    `json:"chapterCount"`
	VolumeCount   int    `json:"volumeCount"`
	Serialization string `json:"serialization"`
}

func decodeManga(r resource) (*Manga, error) {
	var attrs mangaAttributes
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &Manga{
		Media:         attrs.media(r.intID(), MediaManga),
		ChapterCount:  attrs.ChapterCount,
		VolumeCount:   attrs.VolumeCount,
		Serialization: attrs.Serialization,
	}, nil
}
