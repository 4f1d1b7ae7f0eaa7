package auth

import (
	"github.com/wishboardapp/wishboard-backend/internal/users"
)

// RegisterDTO carries a signup request. Avatar metadata is optional; the
// binary upload pipeline lives elsewhere, only the descriptor row is stored.
type RegisterDTO struct {
	Name     string     `json:"name" validate:"required,min=1,max=100"`
	Username string     `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string     `json:"email" validate:"required,email"`
	Tel      *string    `json:"tel" validate:"omitempty,min=5,max=20"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	Avatar   *AvatarDTO `json:"avatar"`
}

// AvatarDTO describes an already-uploaded avatar image.
type AvatarDTO struct {
	Name         string `json:"name" validate:"required"`
	OriginalName string `json:"original_name" validate:"required"`
	Format       string `json:"format" validate:"required"`
	Folder       string `json:"folder" validate:"required"`
}

// LoginDTO carries a credentials check.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshDTO rotates a refresh token.
type RefreshDTO struct {
	UserID       string `json:"user_id" validate:"required,uuid"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPairDTO is the issued credential set.
type TokenPairDTO struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int64             `json:"expires_in"`
	User         *users.ProfileDTO `json:"user"`
}
