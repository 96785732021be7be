package accounts

import "time"

// Account represents a registered account
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	AvatarID      int       `json:"avatar_id"`
	IsBlacklisted bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}

// LoginRequest is the request payload for POST /auth/login
type LoginRequest struct {
	Username   string `json:"username" binding:"required,username"`
	Password   string `json:"password" binding:"required,min=8,max=30"`
	RememberMe bool   `json:"remember_me"`
}

// SignupRequest is the request payload for POST /auth/signup
type SignupRequest struct {
	Password string `json:"password" binding:"required,min=8,max=30"`
}

// Session is the result of a successful login
type Session struct {
	Account   *Account
	Token     string
	TTL       time.Duration
	ExpiresAt time.Time
}

// LoginResponse is the data returned after a successful login
type LoginResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignupResponse is the data returned after a successful signup
type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Response wraps successful procedure results
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
