package user

import (
	"errors"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// name and email are each globally unique; the database constraint is the
// final arbiter, these sentinels surface it.
var (
	ErrNotFound   = errors.New("user not found")
	ErrNameTaken  = errors.New("username already in use")
	ErrEmailTaken = errors.New("email already in use")
)

type SignupRequest struct {
	Username   string `json:"username" binding:"required,min=2,max=40"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	IsAdmin    bool   `json:"isAdmin"`
	AdminToken string `json:"adminToken"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=40"`
	Email string `json:"email" binding:"required,email"`
}
