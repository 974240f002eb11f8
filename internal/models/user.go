package models

import "time"

// Roles accepted at registration.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Login     string    `json:"login" db:"login" example:"maria"` // unique, used as principal name
	Password  string    `json:"-" db:"password"`                  // argon2id hash
	Role      string    `json:"role" db:"role" example:"USER"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
