package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// Service manages accounts and login. Authenticate returns a signed JWT;
// failures are reported with one generic error so a caller cannot probe
// which usernames exist.
type Service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

var errInvalidCredentials = fmt.Errorf("invalid username or password")

func (s *Service) Create(ctx context.Context, u *User, password string) error {
	u.Username = strings.TrimSpace(strings.ToLower(u.Username))
	u.Name = strings.TrimSpace(u.Name)
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if _, err := s.repo.GetByUsername(ctx, u.Username); err == nil {
		return fmt.Errorf("username %s is taken", u.Username)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.Active = true
	return s.repo.Create(ctx, u)
}

// Authenticate verifies credentials and issues a token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(strings.ToLower(username)))
	if err != nil {
		return "", nil, errInvalidCredentials
	}
	if !u.Active {
		return "", nil, errInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, errInvalidCredentials
	}
	token, err := auth.IssueToken(s.jwtSecret, u.ID, u.Name, u.Role, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update edits name, role and active flag. Username is immutable.
func (s *Service) Update(ctx context.Context, u *User) error {
	if !ValidRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	existing, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	u.Username = existing.Username
	u.PasswordHash = existing.PasswordHash
	return s.repo.Update(ctx, u)
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return fmt.Errorf("current password is incorrect")
	}
	if len(next) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
