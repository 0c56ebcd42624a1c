package models

import "strconv"

// Role is the numeric role the platform backend assigns to an account.
type Role int

// Role constants as issued by the platform backend.
// RoleNone is used when the session carries no (or a non-numeric) role.
const (
	RoleNone   Role = 0
	RoleReader Role = 1
	RoleAuthor Role = 2
	RoleEditor Role = 3
	RoleAdmin  Role = 9
)

// AdminRole is the reserved role value granting access to the administrative section.
const AdminRole = RoleAdmin

// AuthorRole is the role required by author-only locations.
const AuthorRole = RoleAuthor

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleReader:
		return "reader"
	case RoleAuthor:
		return "author"
	case RoleEditor:
		return "editor"
	case RoleAdmin:
		return "admin"
	default:
		return "role(" + strconv.Itoa(int(r)) + ")"
	}
}

// IsAdmin reports whether r is the reserved administrative role.
func (r Role) IsAdmin() bool {
	return r == AdminRole
}
