package models

// Presence values for User.Status.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

// User represents a known member of the roster.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
	Bio      string `json:"bio,omitempty"`
	LastSeen int64  `json:"lastSeen,omitempty"` // Unix ms
}

// ValidStatus reports whether s is one of the presence values.
func ValidStatus(s string) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway:
		return true
	}
	return false
}

// ProfileUpdate carries the editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}

// Apply copies the non-nil fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}
