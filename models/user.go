package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

const (
	MinPasswordLength = 6
	// bcrypt only looks at the first 72 bytes.
	MaxPasswordLength = 72
)

// User is the stored account. Password holds the bcrypt hash; it, the token
// list and the avatar never leave the server.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Age       int       `json:"age"`
	Tokens    []string  `json:"-"`
	Avatar    []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasAvatar reports whether an avatar image is stored.
func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0
}

// HasToken reports whether token is still in the user's active list.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName trims the name and rejects blanks.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}

// ValidateEmail normalizes the address and checks its format.
func ValidateEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", invalid("email", "is required")
	}
	if !govalidator.IsEmail(email) {
		return "", invalid("email", "Email is not valid")
	}
	return email, nil
}

// ValidatePassword returns the trimmed plaintext when it is acceptable.
func ValidatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", invalid("password", "is required")
	}
	if len(password) < MinPasswordLength {
		return "", invalid("password", "must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return "", invalid("password", "must be at most 72 bytes")
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return "", invalid("password", "choose more complicated password")
	}
	return password, nil
}

func ValidateAge(age int) error {
	if age < 0 {
		return invalid("age", "Age cannot be negative")
	}
	return nil
}

// UserUpdateFields lists the keys PATCH /users/me accepts.
var UserUpdateFields = []string{"name", "email", "password", "age"}

// UserPatch carries the optional profile changes.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}
