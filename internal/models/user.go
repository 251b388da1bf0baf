package models

import "time"

// GuestDisplayName is used when the identity provider supplies neither a name nor an email.
const GuestDisplayName = "Guest"

// User is the internal account bound to one external principal.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ExternalID    string    `json:"externalId" gorm:"size:128;not null;uniqueIndex"`
	DisplayName   string    `json:"displayName" gorm:"size:100;not null"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	StatusMessage string    `json:"statusMessage,omitempty" gorm:"size:280"`
	Email         string    `json:"-" gorm:"size:255"` // only shown to the owner
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID            uint   `json:"id"`
	ExternalID    string `json:"externalId"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		ExternalID:    u.ExternalID,
		DisplayName:   u.DisplayName,
		AvatarURL:     u.AvatarURL,
		StatusMessage: u.StatusMessage,
	}
}

// Summaries projects a list of users.
func Summaries(users []User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

// FollowCounts holds both directions of a user's follow edges.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// UserProfile is returned by GET /user/:id.
type UserProfile struct {
	UserSummary
	FollowCounts
	CreatedAt time.Time `json:"createdAt"`
}

// OwnProfile is the profile of the authenticated user, including private fields.
type OwnProfile struct {
	UserProfile
	Email string `json:"email,omitempty"`
}

// Principal is the verified identity presented by the auth provider.
type Principal struct {
	ID      string
	Name    string
	Picture string
	Email   string
}

// ProfileEdit is an explicit profile change. Nil fields are left untouched.
type ProfileEdit struct {
	DisplayName   *string
	StatusMessage *string
	AvatarURL     *string
}

// UpdateProfileRequest is the form accepted by PUT /profile.
type UpdateProfileRequest struct {
	DisplayName   *string `form:"displayName" json:"displayName" validate:"omitempty,min=1,max=100"`
	StatusMessage *string `form:"statusMessage" json:"statusMessage" validate:"omitempty,max=280"`
}
