// Package history provides the append-only audit trail of catalog metadata
// mutations. Entries are immutable snapshots; there are no update or delete
// operations.
package history

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/shelflift/internal/entities"
)

// Repository handles book history database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new history repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Record appends a snapshot of the book's current field values, attributed
// to the acting editor and timestamped at append time.
func (r *Repository) Record(book *entities.Book, editorID uint) error {
	entry := &entities.HistoryEntry{
		BookID:          book.ID,
		Title:           book.Title,
		Category:        book.Category,
		AuthorName:      book.Author.Name,
		AvailableCopies: book.AvailableCopies,
		EditorID:        editorID,
		CreatedAt:       time.Now(),
	}
	return r.db.Create(entry).Error
}

// HistoryFor returns a book's history entries, most recent first.
func (r *Repository) HistoryFor(bookID uint) ([]entities.HistoryEntry, error) {
	var entries []entities.HistoryEntry
	err := r.db.Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}
