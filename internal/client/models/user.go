package models

// User is the profile snapshot persisted locally so a session can be
// restored at startup without a network round trip.
type User struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Avatar string   `json:"avatar,omitempty"`
	Theme  string   `json:"theme,omitempty"`
	Streak int      `json:"streak,omitempty"`
	Badges []string `json:"badges,omitempty"`
}
