package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Role is a user's authorization level.
type Role string

// Possible roles
const (
	RoleAdmin      Role = "ADMIN"
	RoleTeamMember Role = "TEAM_MEMBER"
)

// Password length bounds, applied before hashing. bcrypt ignores input past
// 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var emailValidator = validator.New()

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleTeamMember
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", NewValidationError("role", "must be ADMIN or TEAM_MEMBER")
	}
	return r, nil
}

// User represents an account that can sign in.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a user. The caller hashes the password first.
func NewUser(email, name string, role Role, hashedPassword string, now time.Time) (*User, error) {
	now = now.UTC()
	u := &User{
		ID:             uuid.New(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Name:           strings.TrimSpace(name),
		Role:           role,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks that the user holds consistent data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}
	if u.Email == "" {
		return NewValidationError("email", "is required")
	}
	if err := emailValidator.Var(u.Email, "email"); err != nil {
		return NewValidationError("email", "is not a valid address")
	}
	if u.Name == "" {
		return NewValidationError("name", "is required")
	}
	if !u.Role.IsValid() {
		return NewValidationError("role", "must be ADMIN or TEAM_MEMBER")
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return NewValidationError("password", "is required")
	case len(password) < MinPasswordLength:
		return NewValidationError("password", "is too short")
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", "is too long")
	}
	return nil
}

// Summary returns the embeddable view of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uuid.UUID `json:"id"`
	Role   Role      `json:"role"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
}

// IsAdmin reports whether the principal holds the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
