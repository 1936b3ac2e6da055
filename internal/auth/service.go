// Package auth is the identity provider: accounts, tokens and identity-change
// notifications.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Tokens is what a successful sign-in hands back to the client.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IdentityListener observes sign-in and sign-out. prev or next is the zero
// Identity when the transition starts or ends anonymous.
type IdentityListener func(prev, next models.Identity)

type Service struct {
	users      repo.UserRepository
	tokens     *TokenService
	refresh    RefreshStore
	refreshTTL time.Duration
	logger     *slog.Logger

	mu        sync.RWMutex
	listeners map[int]IdentityListener
	nextID    int
}

func NewService(users repo.UserRepository, tokens *TokenService, refresh RefreshStore, refreshTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		refresh:    refresh,
		refreshTTL: refreshTTL,
		logger:     logger,
		listeners:  map[int]IdentityListener{},
	}
}

// OnIdentityChange registers l and returns the function that removes it.
func (s *Service) OnIdentityChange(l IdentityListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(prev, next models.Identity) {
	s.mu.RLock()
	ls := make([]IdentityListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(prev, next)
	}
}

func (s *Service) SignUp(ctx context.Context, email, password, role string) (models.User, Tokens, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, Tokens{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Role:         role,
	})
	if errors.Is(err, repo.ErrDuplicatedValueUnique) {
		return models.User{}, Tokens{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, Tokens{}, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return models.User{}, Tokens{}, err
	}
	s.logger.Info("user signed up", "user_id", user.ID)
	s.notify(models.Identity{}, models.IdentityOf(user))
	return user, tokens, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (models.User, Tokens, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repo.ErrUserNotFound) {
		return models.User{}, Tokens{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, Tokens{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, Tokens{}, ErrInvalidCredentials
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return models.User{}, Tokens{}, err
	}
	s.notify(models.Identity{}, models.IdentityOf(user))
	return user, tokens, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	userID, err := s.refresh.Lookup(ctx, refreshToken)
	if errors.Is(err, ErrRefreshTokenNotFound) {
		return Tokens{}, ErrInvalidToken
	}
	if err != nil {
		return Tokens{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Tokens{}, ErrInvalidToken
	}

	if err := s.refresh.Revoke(ctx, refreshToken); err != nil {
		return Tokens{}, err
	}
	return s.issue(ctx, user)
}

// Logout revokes every refresh token of the caller and signs the identity out.
func (s *Service) Logout(ctx context.Context, identity models.Identity) error {
	if !identity.Authenticated() {
		return nil
	}
	if err := s.refresh.RevokeAll(ctx, identity.UserID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	s.notify(identity, models.Identity{})
	return nil
}

// Verify returns the identity carried by an access token.
func (s *Service) Verify(accessToken string) (models.Identity, error) {
	return s.tokens.ParseToken(accessToken)
}

func (s *Service) Me(ctx context.Context, identity models.Identity) (models.User, error) {
	return s.users.GetByID(ctx, identity.UserID)
}

func (s *Service) issue(ctx context.Context, user models.User) (Tokens, error) {
	access, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return Tokens{}, err
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return Tokens{}, err
	}
	if err := s.refresh.Save(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}
