package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wishboardapp/wishboard-backend/internal/users"
	pkgauth "github.com/wishboardapp/wishboard-backend/pkg/auth"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/db/models"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/security"
	"gorm.io/gorm"
)

// Sessions is the refresh-token lifecycle the service depends on; satisfied by
// pkg/auth/session.Manager.
type Sessions interface {
	Issue(ctx context.Context, userID string) (string, error)
	Rotate(ctx context.Context, userID, token string) (string, error)
	Revoke(ctx context.Context, userID string) error
}

// Service implements registration and the token lifecycle.
type Service struct {
	db       *db.Client
	users    *users.Repository
	sessions Sessions
	cfg      *config.Config
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(client *db.Client, usersRepo *users.Repository, sessions Sessions, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		db:       client,
		users:    usersRepo,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Register creates the user (and optional avatar metadata) in one transaction.
func (s *Service) Register(ctx context.Context, input RegisterDTO) (*users.ProfileDTO, error) {
	hash, err := security.HashPassword(input.Password, s.cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}

	user := &models.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		Tel:          input.Tel,
		PasswordHash: hash,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		if _, err := repo.Create(ctx, user); err != nil {
			return err
		}
		if input.Avatar != nil {
			image := &models.Image{
				UserID:       user.ID,
				Name:         input.Avatar.Name,
				OriginalName: input.Avatar.OriginalName,
				Format:       input.Avatar.Format,
				Folder:       input.Avatar.Folder,
			}
			if err := repo.CreateImage(ctx, image); err != nil {
				return err
			}
			user.Image = image
		}
		return nil
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "email"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email already taken.")
		case db.IsUniqueViolation(err, "username"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Username already taken.")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to register user")
		}
	}

	return users.NewProfileDTO(user), nil
}

// Login verifies credentials and issues an access/refresh token pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginDTO) (*TokenPairDTO, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates the presented refresh token and mints a new access token.
func (s *Service) Refresh(ctx context.Context, input RefreshDTO) (*TokenPairDTO, error) {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, invalidCredentials()
	}

	rotated, err := s.sessions.Rotate(ctx, userID.String(), input.RefreshToken)
	if err != nil {
		return nil, invalidCredentials()
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load user")
	}

	access, err := s.mintAccess(user)
	if err != nil {
		return nil, err
	}
	return s.pair(user, access, rotated), nil
}

// Logout revokes the user's refresh token. Already-issued access tokens stay
// valid until they expire.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Revoke(ctx, userID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to revoke session")
	}
	return nil
}

func (s *Service) issuePair(ctx context.Context, user *models.User) (*TokenPairDTO, error) {
	access, err := s.mintAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Issue(ctx, user.ID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to issue refresh token")
	}
	return s.pair(user, access, refresh), nil
}

func (s *Service) mintAccess(user *models.User) (string, error) {
	token, err := pkgauth.MintAccessToken(s.cfg.JWT, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mint access token")
	}
	return token, nil
}

func (s *Service) pair(user *models.User, access, refresh string) *TokenPairDTO {
	return &TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.JWT.ExpirationMinutes) * 60,
		User:         users.NewProfileDTO(user),
	}
}

func invalidCredentials() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials.")
}
