package entities

import "time"

// HistoryEntry is an immutable snapshot of a book taken when a librarian
// creates or updates catalog metadata. Checkout-driven copy decrements do not
// write history rows; successful checkouts produce file receipts instead
// (see internal/audit).
type HistoryEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookID          uint      `gorm:"index" json:"book_id"`
	Title           string    `gorm:"size:512" json:"title"`
	Category        string    `gorm:"size:100" json:"category,omitempty"`
	AuthorName      string    `gorm:"size:256" json:"author_name,omitempty"`
	AvailableCopies int       `json:"available_copies"`
	EditorID        uint      `gorm:"index" json:"editor_id"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "book_history"
}
