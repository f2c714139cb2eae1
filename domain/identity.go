package domain

import "time"

// Role is the closed set of actor roles. Authorization logic switches
// exhaustively on it; an unknown role is never granted anything.
type Role string

const (
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleUser:
		return true
	}
	return false
}

// Identity represents an actor in the system, either a manager or a user.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Identity) IsManager() bool {
	return i != nil && i.Role == RoleManager
}

// Summary returns the reference shape embedded in resolved task payloads.
func (i *Identity) Summary() IdentitySummary {
	if i == nil {
		return IdentitySummary{}
	}
	return IdentitySummary{
		ID:    i.ID,
		Name:  i.Name,
		Email: i.Email,
	}
}

// IdentitySummary is the expanded form of an identity reference
// (name/email only, never role) used in API responses and events.
type IdentitySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
