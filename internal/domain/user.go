package domain

import (
	"encoding/json"
	"strings"
)

// UserKey is the session key holding the JSON-encoded StoredUser.
const UserKey = "user"

type UserType string

const (
	UserEmployee UserType = "Employee"
	UserAdmin    UserType = "Admin"
)

// StoredUser is the user object written at login and read by the router and
// controllers.
type StoredUser struct {
	Type   UserType `json:"type"`
	Email  string   `json:"email"`
	Status string   `json:"status,omitempty"`
}

// Recognized reports whether the user carries a known type.
func (u StoredUser) Recognized() bool {
	return u.Type == UserEmployee || u.Type == UserAdmin
}

// ParseStoredUser decodes the session value. An empty or malformed value
// yields a zero StoredUser, which is not Recognized.
func ParseStoredUser(raw string) StoredUser {
	var u StoredUser
	if strings.TrimSpace(raw) == "" {
		return u
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return StoredUser{}
	}
	return u
}

// Encode returns the JSON form stored under UserKey.
func (u StoredUser) Encode() string {
	b, _ := json.Marshal(u)
	return string(b)
}
