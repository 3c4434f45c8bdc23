package domain

import "time"

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
)

// UserRole distinguishes clients posting jobs from professionals quoting them.
type UserRole string

const (
	RoleClient       UserRole = "client"
	RoleProfessional UserRole = "professional"
)

// User represents an authenticated user. Clients post jobs; professionals
// declare the categories they serve and submit offers.
type User struct {
	ID          int64        `json:"id" db:"id"`
	Provider    AuthProvider `json:"provider" db:"provider"`
	ProviderID  string       `json:"provider_id" db:"provider_id"`
	Email       string       `json:"email" db:"email"`
	DisplayName string       `json:"display_name" db:"display_name"`
	AvatarURL   *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	Role        UserRole     `json:"role" db:"role"`
	Street      *string      `json:"street,omitempty" db:"street"`
	PostalCode  *string      `json:"postal_code,omitempty" db:"postal_code"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}
