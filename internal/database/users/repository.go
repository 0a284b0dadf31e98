// Package users provides database operations for user accounts. Credential
// checks live in internal/auth; this layer only persists and resolves
// identities.
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/shelflift/internal/entities"
)

var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser persists a new user record.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by primary key.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByTokenHash retrieves a user by the SHA-256 hash of an API token.
func (r *Repository) GetUserByTokenHash(hash string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("token_hash = ?", hash).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateTokenHash stores a new API token hash for the user. An empty hash
// revokes the token.
func (r *Repository) UpdateTokenHash(userID uint, hash string) error {
	result := r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("token_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
