package entity

// AvatarKind tags the variant held by an Avatar.
type AvatarKind string

const (
	AvatarImageURL      AvatarKind = "image_url"
	AvatarInlineGraphic AvatarKind = "inline_graphic"
	AvatarEmoji         AvatarKind = "emoji"
)

// Avatar is a tagged variant: an image URL, an inline graphic (data URI) or an emoji.
type Avatar struct {
	Kind  AvatarKind `json:"kind" yaml:"kind"`
	Value string     `json:"value" yaml:"value"`
}

// LeaderboardUser is a single ranked row.
type LeaderboardUser struct {
	Rank          int    `json:"rank"`
	Username      string `json:"username" yaml:"username"`
	XP            uint64 `json:"xp" yaml:"xp"`
	Level         int    `json:"level"`
	Avatar        Avatar `json:"avatar" yaml:"avatar"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}
