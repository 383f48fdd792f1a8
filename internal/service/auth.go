package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pkordes/notes/internal/auth"
	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
)

// AuthService signs users in and resolves session tokens to identities.
type AuthService struct {
	users      repo.UserRepo
	tokens     *auth.TokenManager
	identities *cache.Cache
}

// NewAuthService constructs an AuthService. Resolved identities are cached
// for cacheTTL; zero disables the cache.
func NewAuthService(users repo.UserRepo, tokens *auth.TokenManager, cacheTTL time.Duration) *AuthService {
	var c *cache.Cache
	if cacheTTL > 0 {
		c = cache.New(cacheTTL, 2*cacheTTL)
	}
	return &AuthService{users: users, tokens: tokens, identities: c}
}

// Login checks the credentials and issues a token.
// Unknown users and wrong passwords both return domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", domain.ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return domain.Session{Token: token, ExpiresAt: exp, Identity: domain.IdentityOf(u)}, nil
}

// Authenticate resolves a session token to the identity of its user.
// Invalid tokens and deleted users return domain.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("service.AuthService.Authenticate: %w: %w", domain.ErrUnauthorized, err)
	}

	key := identityKey(userID)
	if s.identities != nil {
		if v, ok := s.identities.Get(key); ok {
			return v.(domain.Identity), nil
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("service.AuthService.Authenticate: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}

	id := domain.IdentityOf(u)
	if s.identities != nil {
		s.identities.Set(key, id, cache.DefaultExpiration)
	}
	return id, nil
}

// DeleteUser removes the account named username and forgets its cached
// identity. Notes it authored keep existing without an author.
func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("service.AuthService.DeleteUser: %w", err)
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("service.AuthService.DeleteUser: %w", err)
	}
	if s.identities != nil {
		s.identities.Delete(identityKey(u.ID))
	}
	return nil
}

// CreateUser hashes password and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, superuser bool, perms []domain.Permission) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", domain.NewFieldError("username", "this field is required"))
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", domain.NewFieldError("password", "this field is required"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	u, err := s.users.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		IsSuperuser:  superuser,
		Permissions:  perms,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	return u, nil
}

func identityKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
