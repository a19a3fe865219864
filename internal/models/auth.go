package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest registers a student, or a teacher when the secret key matches.
type SignupRequest struct {
	Name      string `json:"name" validate:"required"`
	StudentID string `json:"studentId"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	SecretKey string `json:"secretKey"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string   `json:"accessToken"`
	ExpiresIn   int64    `json:"expiresIn"`
	User        UserInfo `json:"user"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	Name          string   `json:"name"`
	Role          UserRole `json:"role"`
	StudentID     string   `json:"studentId,omitempty"`
	CoursesTaught []string `json:"coursesTaught,omitempty"`
}

// JWTClaims carries the verified identity passed into core operations.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	StudentID string   `json:"student_id,omitempty"`
	Name      string   `json:"name"`
	jwt.RegisteredClaims
}
