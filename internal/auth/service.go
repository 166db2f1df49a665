package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkovalchuk/contacts-api/internal/logging"
	"github.com/mkovalchuk/contacts-api/internal/token"
	"github.com/mkovalchuk/contacts-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUploadFailed       = errors.New("avatar upload failed")
)

const verifyTokenTTL = 24 * time.Hour

// UserStore is the credential persistence surface the service needs
type UserStore interface {
	Create(ctx context.Context, email, hashedPassword string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	SetAvatarURL(ctx context.Context, id int64, avatarURL string) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// Mailer hands messages to the outbound queue; the contract ends at "enqueued"
type Mailer interface {
	EnqueueVerification(to, tokenStr string)
	EnqueuePasswordReset(to, tokenStr string)
}

// Uploader stores a binary asset and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// SessionCache remembers recently authenticated users
type SessionCache interface {
	RememberLogin(ctx context.Context, email string) error
	Forget(ctx context.Context, email string) error
}

// TokenPair is the login/refresh response payload
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service orchestrates registration, login, token refresh, password reset
// and avatar updates over the credential store and the collaborators.
type Service struct {
	users         UserStore
	tokens        token.Service
	mailer        Mailer
	uploader      Uploader
	sessions      SessionCache
	logger        *logging.Logger
	resetTokenTTL time.Duration
}

func NewService(
	users UserStore,
	tokens token.Service,
	mailer Mailer,
	uploader Uploader,
	sessions SessionCache,
	logger *logging.Logger,
	resetTokenTTL time.Duration,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		uploader:      uploader,
		sessions:      sessions,
		logger:        logger,
		resetTokenTTL: resetTokenTTL,
	}
}

// Register creates a new account and queues a verification email. The user
// row commit and the mail dispatch are deliberately not atomic: when delivery
// fails the user stays registered and the failure is only logged.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	verifyToken, err := s.tokens.Issue(newUser.ID, newUser.Email, token.KindVerify, verifyTokenTTL)
	if err != nil {
		s.logger.Warn("failed to issue verification token", "email", email, "error", err)
		return newUser, nil
	}
	s.mailer.EnqueueVerification(newUser.Email, verifyToken)

	return newUser, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(existing.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(existing.ID, existing.Email)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RememberLogin(ctx, existing.Email); err != nil {
		// Cache failures never block a login
		s.logger.Warn("failed to cache login session", "email", existing.Email, "error", err)
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != token.KindRefresh {
		return nil, token.ErrInvalidToken
	}

	existing, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, token.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issuePair(existing.ID, existing.Email)
}

// RequestPasswordReset issues a short-lived reset token and queues the mail.
// Returns ErrUserNotFound for unknown addresses; unlike login this leaks
// whether an email is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	resetToken, err := s.tokens.Issue(existing.ID, existing.Email, token.KindReset, s.resetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	s.mailer.EnqueuePasswordReset(existing.Email, resetToken)
	return nil
}

// ResetPassword sets a new password for the subject of a valid reset token
func (s *Service) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return ErrInvalidResetToken
	}
	if claims.Kind != token.KindReset {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, string(hash)); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessions.Forget(ctx, claims.Subject); err != nil {
		s.logger.Warn("failed to drop cached session", "email", claims.Subject, "error", err)
	}

	return nil
}

// UpdateAvatar uploads the image and persists its URL on the user record.
// An unreachable storage backend is fatal to the request.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, data []byte, contentType string) (string, error) {
	avatarURL, err := s.uploader.Upload(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, err)
	}

	if err := s.users.SetAvatarURL(ctx, userID, avatarURL); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to persist avatar url: %w", err)
	}

	return avatarURL, nil
}

func (s *Service) issuePair(userID int64, email string) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccess(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefresh(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
