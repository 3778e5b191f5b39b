package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and user info.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// ProfileResponse wraps the authenticated user.
type ProfileResponse struct {
	User UserInfo `json:"user"`
}

// UserInfo describes a user in responses.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthContext carries the caller identity resolved for one request. The zero
// value is an anonymous caller.
type AuthContext struct {
	UserID string
	Email  string
}

// Authenticated reports whether the request carried a valid token.
func (a AuthContext) Authenticated() bool {
	return a.UserID != ""
}

// GeneratorID returns the user id to attribute created records to, or nil.
func (a AuthContext) GeneratorID() *string {
	if !a.Authenticated() {
		return nil
	}
	id := a.UserID
	return &id
}
