package model

import (
	"time"

	"library-backend/internal/shared/access"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // never expose in JSON
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u User) Actor() access.Actor {
	return access.Actor{ID: u.ID, Role: u.Role}
}
