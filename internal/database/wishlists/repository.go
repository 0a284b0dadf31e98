// Package wishlists provides database operations for per-user wishlists.
//
// Every user has at most one live ("created") wishlist at a time, enforced by
// a partial unique index on wishlists(user_id), see database.ensureIndexes.
// The "borrowed" status is terminal: once a checkout succeeds the record is
// immutable history and a later GetOrCreateActive starts a fresh wishlist.
package wishlists

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/entities"
)

var (
	// ErrWishlistBorrowed is returned on any attempt to mutate a wishlist
	// that has already been checked out.
	ErrWishlistBorrowed = errors.New("wishlist has been borrowed and is immutable")

	// ErrWishlistNotFound is returned when a wishlist reference does not
	// resolve.
	ErrWishlistNotFound = errors.New("wishlist not found")
)

// Repository handles all wishlist database operations. It consults the
// catalog repository to validate book references at add-time; a wishlist
// entry reserves nothing, availability is re-checked at checkout.
type Repository struct {
	db      *gorm.DB
	catalog *catalog.Repository
}

// NewRepository creates a new wishlist repository.
func NewRepository(db *gorm.DB, catalogRepo *catalog.Repository) *Repository {
	return &Repository{db: db, catalog: catalogRepo}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx, catalog: r.catalog.WithTx(tx)}
}

// GetOrCreateActive returns the user's live wishlist, creating an empty one
// on first contact. Safe under concurrent first-time calls: the partial
// unique index rejects the second INSERT and we re-read the winner's row.
func (r *Repository) GetOrCreateActive(userID uint) (*entities.Wishlist, error) {
	wishlist, err := r.findActive(userID)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &entities.Wishlist{
		UserID: userID,
		Status: entities.WishlistStatusCreated,
	}
	if err := r.db.Create(fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent first-time call.
			return r.findActive(userID)
		}
		return nil, err
	}
	fresh.Entries = []entities.WishlistBook{}
	return fresh, nil
}

// CreateWishlist unconditionally creates a fresh empty wishlist in the
// created status. It does not enforce the at-most-one-active invariant;
// callers needing that must use GetOrCreateActive.
func (r *Repository) CreateWishlist(userID uint) (*entities.Wishlist, error) {
	wishlist := &entities.Wishlist{
		UserID: userID,
		Status: entities.WishlistStatusCreated,
	}
	if err := r.db.Create(wishlist).Error; err != nil {
		return nil, err
	}
	wishlist.Entries = []entities.WishlistBook{}
	return wishlist, nil
}

// GetWishlistByID loads a wishlist with its entries in insertion order.
func (r *Repository) GetWishlistByID(id uint) (*entities.Wishlist, error) {
	var wishlist entities.Wishlist
	err := r.preloadEntries(r.db).First(&wishlist, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	return &wishlist, nil
}

// AddBook appends a book reference to the user's active wishlist.
//
// The book must exist and currently have copies available; that is only a
// feasibility check, availability can still change before checkout. Adding a
// book that is already present is a no-op success.
func (r *Repository) AddBook(userID, bookID uint) (*entities.Wishlist, error) {
	wishlist, err := r.GetOrCreateActive(userID)
	if err != nil {
		return nil, err
	}
	if wishlist.IsTerminal() {
		return nil, ErrWishlistBorrowed
	}

	book, err := r.catalog.GetBookByID(bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, &catalog.CopiesError{BookID: book.ID, Title: book.Title}
	}

	if wishlist.ContainsBook(bookID) {
		return wishlist, nil
	}

	// The position counter never reuses slots freed by removals, so entry
	// order stays stable across add, remove, add sequences. Computing it
	// inside the INSERT keeps concurrent appends from reading the same max.
	err = r.db.Exec(
		`INSERT INTO wishlist_books (wishlist_id, book_id, position, created_at)
		 SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ?
		 FROM wishlist_books WHERE wishlist_id = ?`,
		wishlist.ID, bookID, time.Now(), wishlist.ID,
	).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent add of the same book won; treat as the no-op
			// success idempotence promises.
			return r.GetOrCreateActive(userID)
		}
		return nil, err
	}

	return r.GetOrCreateActive(userID)
}

// RemoveBook drops a book reference from the active wishlist. Removing a
// book that is not present is a no-op success.
func (r *Repository) RemoveBook(userID, bookID uint) (*entities.Wishlist, error) {
	wishlist, err := r.GetOrCreateActive(userID)
	if err != nil {
		return nil, err
	}
	if wishlist.IsTerminal() {
		return nil, ErrWishlistBorrowed
	}

	err = r.db.Where("wishlist_id = ? AND book_id = ?", wishlist.ID, bookID).
		Delete(&entities.WishlistBook{}).Error
	if err != nil {
		return nil, err
	}

	return r.GetOrCreateActive(userID)
}

// ListBooks returns the contents of the user's active wishlist in insertion
// order, lazily creating the wishlist like GetOrCreateActive does.
func (r *Repository) ListBooks(userID uint) ([]entities.Book, error) {
	wishlist, err := r.GetOrCreateActive(userID)
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(wishlist.Entries))
	for _, entry := range wishlist.Entries {
		books = append(books, entry.Book)
	}
	return books, nil
}

// MarkBorrowed transitions a wishlist into its terminal state and clears the
// book set. Intended to run inside the checkout transaction, after every
// contained book has been reserved.
func (r *Repository) MarkBorrowed(wishlist *entities.Wishlist) error {
	if wishlist.IsTerminal() {
		return ErrWishlistBorrowed
	}

	err := r.db.Where("wishlist_id = ?", wishlist.ID).
		Delete(&entities.WishlistBook{}).Error
	if err != nil {
		return err
	}

	result := r.db.Model(&entities.Wishlist{}).
		Where("id = ? AND status = ?", wishlist.ID, entities.WishlistStatusCreated).
		Update("status", entities.WishlistStatusBorrowed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWishlistBorrowed
	}

	wishlist.Status = entities.WishlistStatusBorrowed
	wishlist.Entries = []entities.WishlistBook{}
	return nil
}

// DeleteStaleEmpty removes created wishlists with no entries that have been
// idle since before the cutoff. Borrowed wishlists are history and are never
// touched. Returns the number of deleted wishlists.
func (r *Repository) DeleteStaleEmpty(olderThan time.Time) (int64, error) {
	result := r.db.
		Where("status = ?", entities.WishlistStatusCreated).
		Where("updated_at < ?", olderThan).
		Where("id NOT IN (?)", r.db.Model(&entities.WishlistBook{}).Select("wishlist_id")).
		Delete(&entities.Wishlist{})
	return result.RowsAffected, result.Error
}

func (r *Repository) findActive(userID uint) (*entities.Wishlist, error) {
	var wishlist entities.Wishlist
	err := r.preloadEntries(r.db).
		Where("user_id = ? AND status = ?", userID, entities.WishlistStatusCreated).
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *Repository) preloadEntries(db *gorm.DB) *gorm.DB {
	return db.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, created_at ASC")
	}).Preload("Entries.Book")
}
