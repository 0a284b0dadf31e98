package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRolePatron    UserRole = "patron"
	UserRoleLibrarian UserRole = "librarian"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	Role         UserRole       `gorm:"size:20;default:'patron'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsLibrarian reports whether the user may perform catalog writes.
func (u *User) IsLibrarian() bool {
	return u.Role == UserRoleLibrarian
}
