package kitsu

import "time"

type User struct {
	ID                  int
	Name                string
	Slug                string
	About               string
	Location            string
	WaifuOrHusbando     string
	Gender              string
	Birthday            time.Time
	FollowersCount      int
	FollowingCount      int
	CommentsCount       int
	FavoritesCount      int
	PostsCount          int
	MediaReactionsCount int
	ProTier             string
	Avatar              *Image
	CoverImage          *Image
	CreatedAt           time.Time
}

// URL links to the user's profile page.
func (u *User) URL() string { return WebURL + "/users/" + u.Slug }

// Pro reports whether the user has any PRO tier.
func (u *User) Pro() bool { return u.ProTier != "" }

type userAttributes struct {
	Name                string           `json:"name"`
	Slug                string           `json:"slug"`
	About               string           `json:"about"`
	Location            string           `json:"location"`
	WaifuOrHusbando     string           `json:"waifuOrHusbando"`
	Gender              string           `json:"gender"`
	Birthday            string           `json:"birthday"`
	FollowersCount      int              `json:"followersCount"`
	FollowingCount      int              `json:"followingCount"`
	CommentsCount       int              `json:"commentsCount"`
	FavoritesCount      int              `json:"favoritesCount"`
	PostsCount          int              `json:"postsCount"`
	MediaReactionsCount int              `json:"mediaReactionsCount"`
	ProTier             string           `json:"proTier"`
	Avatar              *imageAttributes `json:"avatar"`
	CoverImage          *imageAttributes `json:"coverImage"`
	CreatedAt           string           `json:"createdAt"`
}

func decodeUser(r resource) (*User, error) {
	var attrs userAttributes
	if err := r.decode(&attrs); err != nil {
		return nil, err
	}
	return &User{
		ID:                  r.intID(),
		Name:                attrs.Name,
		Slug:                attrs.Slug,
		About:               attrs.About,
		Location:            attrs.Location,
		WaifuOrHusbando:     attrs.WaifuOrHusbando,
		Gender:              attrs.Gender,
		Birthday:            parseTime(attrs.Birthday),
		FollowersCount:      attrs.FollowersCount,
		FollowingCount:      attrs.FollowingCount,
		CommentsCount:       attrs.CommentsCount,
		FavoritesCount:      attrs.FavoritesCount,
		PostsCount:          attrs.PostsCount,
		MediaReactionsCount: attrs.MediaReactionsCount,
		ProTier:             attrs.ProTier,
		Avatar:              attrs.Avatar.image(),
		CoverImage:          attrs.CoverImage.image(),
		CreatedAt:           parseTime(attrs.CreatedAt),
	}, nil
}
