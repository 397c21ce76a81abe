package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleAdmin is the only role the server issues. The SPA references a
// student-scoped claim shape as well, but no student login route exists
// server-side; that half of the feature was never built.
const RoleAdmin = "admin"

// Admin is the single privileged account allowed to mutate content.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	Username  string    `bun:"username,unique,notnull" json:"username"`
	Password  string    `bun:"password,notnull" json:"-"` // Never expose password hash in JSON
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the public identity echoed back to the client
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the response for successful authentication
type LoginResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// VerifyResponse reports whether a presented token is still valid
type VerifyResponse struct {
	Valid bool    `json:"valid"`
	User  *Claims `json:"user,omitempty"`
}
