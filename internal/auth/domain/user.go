package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	RoleID       string // Foreign key to roles table
	RoleName     string // Joined from roles for convenience
	IsActive     bool

	// RefreshTokenHash is the fingerprint of the single refresh token this
	// user may currently redeem. Empty means no active session.
	RefreshTokenHash      string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public view of a user. It never carries the password hash or
// refresh token.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.RoleName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Principal is the identity attached to an authenticated request. It is only
// ever built from verified token claims.
type Principal struct {
	UserID string
	Email  string
	Role   string
}
