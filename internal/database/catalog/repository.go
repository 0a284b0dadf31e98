// Package catalog provides database operations for books and their shared
// copy-availability counters.
//
// ReserveCopy and ReleaseCopy are the only mutations the checkout path uses;
// both are single conditional UPDATE statements, so two callers racing for
// the last copy of a book can never drive the counter below zero.
package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/shelflift/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetBookByID retrieves a single book with its author.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListBooks returns catalog entries, optionally filtered by category.
func (r *Repository) ListBooks(category string, limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := r.db.Model(&entities.Book{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.db.Preload("Author").Order("title ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&books).Error
	return books, total, err
}

// CreateBook adds a new catalog entry. Copy counts below zero are rejected
// here so no book ever starts in an impossible state.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.Title == "" {
		return ErrTitleRequired
	}
	if book.AvailableCopies < 0 {
		return ErrInvalidCopyCount
	}
	if book.AuthorID != 0 {
		var author entities.Author
		if err := r.db.First(&author, book.AuthorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAuthorNotFound
			}
			return err
		}
	}
	return r.db.Create(book).Error
}

// UpdateBook persists librarian edits to catalog metadata. The copy counter
// is updated as an absolute value; reservations go through ReserveCopy.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if book.Title == "" {
		return ErrTitleRequired
	}
	if book.AvailableCopies < 0 {
		return ErrInvalidCopyCount
	}

	result := r.db.Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":            book.Title,
			"category":         book.Category,
			"author_id":        book.AuthorID,
			"available_copies": book.AvailableCopies,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// ReserveCopy atomically claims one copy of a book for lending.
//
// The check and decrement happen in one statement; a plain read-modify-write
// would let two concurrent reservations both observe the last copy and drive
// the counter negative.
func (r *Repository) ReserveCopy(id uint) (*entities.Book, error) {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND available_copies > 0", id).
		Update("available_copies", gorm.Expr("available_copies - 1"))
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the book is gone or the last copy is. Re-read to tell
		// the caller which.
		book, err := r.GetBookByID(id)
		if err != nil {
			return nil, err
		}
		return nil, &CopiesError{BookID: book.ID, Title: book.Title}
	}

	return r.GetBookByID(id)
}

// ReleaseCopy returns a copy to the pool. Checkout rollback is handled by
// the surrounding transaction; this exists for book returns and manual
// corrections.
func (r *Repository) ReleaseCopy(id uint) (*entities.Book, error) {
	result := r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("available_copies", gorm.Expr("available_copies + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookNotFound
	}
	return r.GetBookByID(id)
}

// CreateAuthor adds an author record.
func (r *Repository) CreateAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

// GetAuthorByID retrieves a single author.
func (r *Repository) GetAuthorByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// ListAuthors returns all authors ordered by name.
func (r *Repository) ListAuthors() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Order("name ASC").Find(&authors).Error
	return authors, err
}
