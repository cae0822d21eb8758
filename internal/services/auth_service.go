package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opal-spaces/opal-backend/internal/config"
	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

const googleProvider = "google"

var (
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrAssertionInvalid   = errors.New("invalid identity assertion")
	ErrRefreshMismatch    = errors.New("refresh token revoked or superseded")
)

// ProviderConflictError rejects a federated login against an account that is
// already verified under a different provider.
type ProviderConflictError struct {
	Provider string
}

func (e *ProviderConflictError) Error() string {
	return fmt.Sprintf("account already registered with %s login", e.Provider)
}

// AuthSession is the result of a successful login: tokens plus the identity
// they were issued for.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService drives registration, verification, login, federation, refresh
// and logout over the user store.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *TokenService
	mailer Mailer
	google IdentityVerifier
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *TokenService, mailer Mailer, google IdentityVerifier) *AuthService {
	return &AuthService{
		db:     db,
		cfg:    cfg,
		tokens: tokens,
		mailer: mailer,
		google: google,
	}
}

// Register creates an unverified identity and dispatches the verification
// email. No session starts until the address is verified, so no tokens are
// issued here. A delivery failure rolls the new user row back.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	// Client-supplied roles are allow-listed; anything but ADMIN falls
	// back to USER.
	role := models.RoleUser
	if req.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  &hash,
		Role:      role,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			// The unique index is the arbiter when two registrations
			// race on the same email.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		token, err := s.tokens.IssueEmailToken(user.Email)
		if err != nil {
			return fmt.Errorf("failed to sign verification token: %w", err)
		}

		link := fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
		subject, body := VerificationEmail(link)
		if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
			return fmt.Errorf("failed to send verification email: %w", err)
		}
		return nil
	})
}

// VerifyEmail redeems a verification token. Re-verifying an already verified
// account fails, which gives the token effective single-use semantics without
// a revocation list.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.VerifyEmailToken(token)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("verified", true).Error; err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// Login checks the password credential and starts a session. Federated-only
// accounts have no password and are rejected the same way as a wrong one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	if user.Password == nil || !CheckPassword(password, *user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, &user)
}

// GoogleLogin verifies the ID-token assertion and finds or creates the
// matching identity. Federated identities skip email verification.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*AuthSession, error) {
	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		slog.Error("google credential verification failed", "error", err)
		return nil, ErrAssertionInvalid
	}

	provider := googleProvider

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:        uuid.New(),
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Role:      models.RoleUser,
			Verified:  true,
			Provider:  &provider,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)

	default:
		// A verified account under another provider (including a
		// verified password account) must not be taken over.
		if user.Verified && user.ProviderName() != provider {
			return nil, &ProviderConflictError{Provider: user.ProviderName()}
		}
		if !user.Verified || user.Provider == nil {
			updates := map[string]interface{}{
				"provider":   provider,
				"verified":   true,
				"first_name": identity.FirstName,
				"last_name":  identity.LastName,
			}
			if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("failed to link provider: %w", err)
			}
			user.Provider = &provider
			user.Verified = true
			user.FirstName = identity.FirstName
			user.LastName = identity.LastName
		}
	}

	return s.startSession(ctx, &user)
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must match the one currently stored for the identity; a superseded token
// (post-logout or post-rotation) is rejected. The refresh token itself is not
// rotated on this path.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRefreshMismatch
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return "", ErrRefreshMismatch
	}

	return s.tokens.IssueAccess(&user)
}

// Logout invalidates the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthSession, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	// Rotation: one UPDATE replaces whatever token was active, so the
	// previous session's refresh token stops working immediately.
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("refresh_token", refresh).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	user.RefreshToken = &refresh

	return &AuthSession{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
