package models

import (
	"encoding/json"
	"maps"
	"math"
)

// Keys every user identity mapping carries after a successful login.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
)

// User is the identity mapping held by the session.
//
// It is deliberately an open mapping: the profile endpoint returns arbitrary
// fields that are overlaid onto the identity partial set at login.
type User map[string]any

// Merge returns a new mapping with the fields of partial overlaid onto u.
// Neither u nor partial is modified.
func (u User) Merge(partial map[string]any) User {
	merged := make(User, len(u)+len(partial))
	maps.Copy(merged, u)
	maps.Copy(merged, partial)
	return merged
}

// Clone returns a shallow copy of u. A nil mapping clones to an empty one.
func (u User) Clone() User {
	return u.Merge(nil)
}

// Role returns the numeric role of the user.
//
// Only integral JSON numbers count as a role; strings, fractions and missing
// values yield RoleNone so that a malformed identity never compares equal to
// a real role.
func (u User) Role() Role {
	switch v := u[RoleKey].(type) {
	case int:
		return Role(v)
	case int64:
		return Role(v)
	case Role:
		return v
	case float64:
		if math.Trunc(v) == v && !math.IsInf(v, 0) {
			return Role(int(v))
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return Role(n)
		}
	}
	return RoleNone
}

// Username returns the username field, or "" when absent.
func (u User) Username() string {
	name, _ := u[UsernameKey].(string)
	return name
}

// ID returns the user_id field as an integer, or 0 when absent or not numeric.
func (u User) ID() int {
	n := ToNumber(u[UserIDKey])
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

// ParseUser decodes a JSON-serialized identity mapping.
// Missing, invalid, or non-object input yields an empty mapping.
func ParseUser(raw string) User {
	if raw == "" {
		return User{}
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u == nil {
		return User{}
	}
	return u
}
