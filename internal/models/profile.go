package models

import (
	"time"
)

// Profile holds the public header metadata scraped from one profile page.
// Username and ProfileURL are always set on a successfully assembled
// profile; every other field degrades to its zero value.
type Profile struct {
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Verified       bool      `json:"verified"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	ProfileURL     string    `json:"profile_url"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

func NewProfile(username, profileURL string) *Profile {
	return &Profile{
		Username:    username,
		DisplayName: username,
		ProfileURL:  profileURL,
	}
}

// Handle returns the @-prefixed form used on the card face.
func (p *Profile) Handle() string {
	return "@" + p.Username
}

func (p *Profile) Validate() []string {
	var problems []string

	if p.Username == "" {
		problems = append(problems, "username is required")
	}

	if p.ProfileURL == "" {
		problems = append(problems, "profile URL is required")
	}

	if p.FollowerCount < 0 || p.FollowingCount < 0 {
		problems = append(problems, "counts must be non-negative")
	}

	return problems
}
