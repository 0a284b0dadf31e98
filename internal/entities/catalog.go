package entities

import (
	"time"

	"gorm.io/gorm"
)

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:256" json:"name"`
	Country   string    `gorm:"size:100" json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is a catalog entry with a shared pool of lendable copies.
// AvailableCopies is decremented by checkout reservations and must never go
// below zero; the catalog repository enforces that with a conditional update.
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Category        string         `gorm:"index;size:100" json:"category,omitempty"`
	AuthorID        uint           `gorm:"index" json:"author_id"`
	Author          Author         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AvailableCopies int            `gorm:"not null;default:0" json:"available_copies"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}
