package models

import "time"

type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

const RoleAdmin = "admin"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthPayload is the data object returned by login, register and refresh.
type AuthPayload struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}
