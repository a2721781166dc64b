package model

// Role is the role of a chat user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReporter Role = "reporter"
	RoleUser     Role = "user"
)

// User is a known chat user.
type User struct {
	ID   string
	Name string
	Role Role
}
