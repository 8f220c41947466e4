package models

import "time"

// UserProfile is the stored record for one authenticated identity.
type UserProfile struct {
	UserID      string    `bson:"userId" json:"userId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	AvatarURL   string    `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProfileView is the public JSON shape of a profile.
type ProfileView struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View returns the fields of p that may leave the service.
func (p *UserProfile) View() ProfileView {
	return ProfileView{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

// Clone returns a copy safe to hand to callers.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
