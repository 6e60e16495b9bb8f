package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User описывает пользователя платформы. Аккаунт может быть создан либо по
// email+паролю, либо по адресу кошелька, поэтому оба поля опциональны.
type User struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Email             *string        `db:"email" json:"email,omitempty"`
	PasswordHash      *string        `db:"password_hash" json:"-"`
	WalletAddress     *string        `db:"wallet_address" json:"wallet_address,omitempty"`
	Role              string         `db:"role" json:"role"`
	Bio               *string        `db:"bio" json:"bio,omitempty"`
	Skills            pq.StringArray `db:"skills" json:"skills"`
	HourlyRate        *float64       `db:"hourly_rate" json:"hourly_rate,omitempty"`
	CompletedProjects int            `db:"completed_projects" json:"completed_projects"`
	Rating            float64        `db:"rating" json:"rating"`
	AvailableForHire  bool           `db:"available_for_hire" json:"available_for_hire"`
	Location          *string        `db:"location" json:"location,omitempty"`
	LastActiveAt      *time.Time     `db:"last_active_at" json:"last_active_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// IsAdmin проверяет, что пользователь — администратор платформы.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanSubmitProposals проверяет, что роль позволяет откликаться на проекты.
func (u *User) CanSubmitProposals() bool {
	return u.Role == RoleFreelancer || u.Role == RoleAdmin
}

// CanCreateProjects проверяет, что роль позволяет публиковать проекты.
func (u *User) CanCreateProjects() bool {
	return u.Role == RoleClient || u.Role == RoleAdmin
}

// PublicUser — срез полей пользователя для публичных ответов.
type PublicUser struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Email             *string        `json:"email,omitempty"`
	WalletAddress     *string        `json:"wallet_address,omitempty"`
	Role              string         `json:"role"`
	Bio               *string        `json:"bio,omitempty"`
	Skills            pq.StringArray `json:"skills"`
	Rating            float64        `json:"rating"`
	CompletedProjects int            `json:"completed_projects"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		WalletAddress:     u.WalletAddress,
		Role:              u.Role,
		Bio:               u.Bio,
		Skills:            u.Skills,
		Rating:            u.Rating,
		CompletedProjects: u.CompletedProjects,
		CreatedAt:         u.CreatedAt,
	}
}
