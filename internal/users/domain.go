package users

import (
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// User represents a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Phone        string `json:"phone"`
}

// SignupInput carries the fields required to register.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

// ErrUserExists is returned when the username or email is already taken.
var ErrUserExists = shared.Errorf(shared.ErrDuplicate, "user already exists")
