package models

import "time"

type User struct {
	ID int64 `bson:"_id" json:"id"`

	// AuthID is the verified subject issued by the identity provider.
	AuthID string `bson:"auth_id" json:"-"`

	Username    string `bson:"username" json:"username" validate:"required"`
	DisplayName string `bson:"display_name" json:"display_name" validate:"required"`
	Email       string `bson:"email" json:"email" validate:"required,email"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio         string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL   string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	// IsHost is true iff a Host record exists for this user.
	IsHost bool `bson:"is_host" json:"is_host"`

	// Encoded id list of bookmarked parties, see idlist.go.
	SavedPartyIDs string `bson:"saved_party_ids" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Host is the capability record that lets a user own parties. Hosts have
// their own id space; Party.HostID points here, not at User.
type Host struct {
	ID        int64     `bson:"_id" json:"id"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// UserSummary is the trimmed profile shape embedded in party responses.
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
