package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
)

// Known reports whether r is one of the roles the backend issues.
func (r Role) Known() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// TokenChange is emitted by a TokenStore whenever the persisted token is
// written or removed, by this process or any other sharing the store.
type TokenChange struct {
	Token   string    `json:"token,omitempty"`
	Cleared bool      `json:"cleared,omitempty"`
	Origin  string    `json:"origin,omitempty"`
	At      time.Time `json:"at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}
