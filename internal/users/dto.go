package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
)

// ProfileDTO is the authenticated user's own view of their account.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Tel       *string   `json:"tel,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfileDTO is what other users see when they look a handle up.
type PublicProfileDTO struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// NewProfileDTO flattens the avatar relation into the profile payload.
func NewProfileDTO(user *models.User) *ProfileDTO {
	dto := &ProfileDTO{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Tel:       user.Tel,
		CreatedAt: user.CreatedAt,
	}
	if user.Image != nil {
		name := user.Image.Name
		dto.Avatar = &name
	}
	return dto
}

// NewPublicProfileDTO builds the public view; avatar is an absolute URL under
// the provided base, or null when the user has none.
func NewPublicProfileDTO(user *models.User, avatarBaseURL string) *PublicProfileDTO {
	dto := &PublicProfileDTO{
		Name:     user.Name,
		Username: user.Username,
	}
	if user.Image != nil {
		url := avatarBaseURL + "/" + user.Image.Name
		dto.Avatar = &url
	}
	return dto
}
