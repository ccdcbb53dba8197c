package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	captcha CaptchaVerifier
	google  TokenVerifier
}

func NewService(repo Repository, captcha CaptchaVerifier, google TokenVerifier) *Service {
	return &Service{repo: repo, captcha: captcha, google: google}
}

// Register creates a new account after captcha verification.
func (s *Service) Register(ctx context.Context, name, email, password, captchaToken, remoteIP string) (*User, error) {
	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, captchaToken, remoteIP); err != nil {
			return nil, fmt.Errorf("%w: captcha inválido", shared.ErrValidation)
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email já cadastrado", shared.ErrValidation)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, strings.TrimSpace(name), email, string(hash), nil)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password, captchaToken, remoteIP string) (*User, error) {
	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, captchaToken, remoteIP); err != nil {
			return nil, shared.ErrInvalidCredentials
		}
	}
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive || user.PasswordHash == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	_ = s.repo.TouchLogin(ctx, user.ID)
	return user, nil
}

// AuthenticateGoogle signs a user in (or up) from a Google ID token.
func (s *Service) AuthenticateGoogle(ctx context.Context, idToken string) (*User, error) {
	if s.google == nil {
		return nil, shared.ErrInvalidCredentials
	}
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	user, err := s.repo.FindByGoogleID(ctx, profile.Subject)
	if err == nil {
		_ = s.repo.TouchLogin(ctx, user.ID)
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	// First Google login with a known email links the accounts; otherwise
	// a fresh password-less account is created.
	if existing, err := s.repo.FindByEmail(ctx, strings.ToLower(profile.Email)); err == nil {
		_ = s.repo.TouchLogin(ctx, existing.ID)
		return existing, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	id, err := s.repo.Create(ctx, profile.Name, strings.ToLower(profile.Email), "", &profile.Subject)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Me loads the current account.
func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RegisterSession persists session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
