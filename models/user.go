package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents what a user does in the office
type UserRole string

const (
	RoleClaimant UserRole = "claimant"
	RoleOfficial UserRole = "official"
	RoleJudge    UserRole = "judge"
)

// User represents a party or an officer of the court
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
