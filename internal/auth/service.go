package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mrlokans/shelflift/internal/config"
	"github.com/mrlokans/shelflift/internal/database/users"
	"github.com/mrlokans/shelflift/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles authentication and user management. It is the boundary to
// the identity layer: the rest of the application receives a verified user
// ID and never inspects credentials.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(userRepo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		users:  userRepo,
		config: cfg,
	}
}

// IsAuthEnabled reports whether credential checks are active.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	// RFC 5321 caps addresses at 254 characters
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	switch role {
	case entities.UserRolePatron, entities.UserRoleLibrarian:
		// Valid
	default:
		return nil, ErrInvalidRole
	}

	if _, err := s.users.GetUserByUsername(username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// Burn a comparison anyway so missing users are not
			// distinguishable by timing.
			_ = CheckPassword(password, "$2a$12$000000000000000000000uGyr1jSDZZZZZZZZZZZZZZZZZZZZZZZZ")
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// UserByToken resolves a plaintext API token to its user.
func (s *Service) UserByToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByTokenHash(HashToken(token))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// GenerateToken issues a fresh API token for the user, replacing any
// previous one. The plaintext is returned exactly once.
func (s *Service) GenerateToken(userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.users.UpdateTokenHash(userID, hash); err != nil {
		return "", err
	}
	return plaintext, nil
}

// RevokeToken invalidates the user's API token.
func (s *Service) RevokeToken(userID uint) error {
	return s.users.UpdateTokenHash(userID, "")
}

// UserByID resolves a user ID, for session validation.
func (s *Service) UserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}
