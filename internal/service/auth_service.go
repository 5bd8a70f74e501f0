package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/repo"
)

var ErrBadCredentials = errors.New("invalid email or password")

// Session is what a successful login hands back to the client.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type authService struct {
	users   repo.UserRepository
	tokens  repo.TokenRepository
	manager *auth.Manager
	logger  *zap.Logger
}

type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
}

func NewAuthService(users repo.UserRepository, tokens repo.TokenRepository, manager *auth.Manager, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, manager: manager, logger: logger}
}

func (s *authService) Register(ctx context.Context, fullName, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, fullName, email, string(hash))
}

// Login verifies the password, mints a JWT and persists the token
// record the socket handshake will look up.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	token, expiresAt, err := s.manager.Mint(auth.Identity{
		UserID:      user.UserID,
		Email:       user.Email,
		DisplayName: user.FullName,
	})
	if err != nil {
		return nil, err
	}

	record := model.Token{
		Token:     token,
		UserID:    user.UserID,
		Email:     user.Email,
		FullName:  user.FullName,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	s.logger.Info("user logged in", zap.Int64("user", user.UserID))
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.tokens.Delete(ctx, token)
}
