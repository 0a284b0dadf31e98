package entities

import "time"

type WishlistStatus string

const (
	// WishlistStatusCreated is the single live wishlist a user accumulates
	// books into. At most one exists per user at any time.
	WishlistStatusCreated WishlistStatus = "created"

	// WishlistStatusBorrowed is terminal: the book set has been converted
	// into copy reservations and the record is immutable history.
	WishlistStatusBorrowed WishlistStatus = "borrowed"
)

type Wishlist struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	Status    WishlistStatus `gorm:"size:20;default:'created'" json:"status"`
	Entries   []WishlistBook `gorm:"foreignKey:WishlistID" json:"entries,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WishlistBook joins a wishlist to a book. The composite primary key keeps
// the book set unique; Position preserves insertion order for checkout.
type WishlistBook struct {
	WishlistID uint      `gorm:"primaryKey" json:"wishlist_id"`
	BookID     uint      `gorm:"primaryKey" json:"book_id"`
	Position   int       `gorm:"not null" json:"position"`
	Book       Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

func (WishlistBook) TableName() string {
	return "wishlist_books"
}

// IsTerminal reports whether the wishlist has reached its final state.
func (w *Wishlist) IsTerminal() bool {
	return w.Status == WishlistStatusBorrowed
}

// BookIDs returns the contained book IDs in insertion order.
func (w *Wishlist) BookIDs() []uint {
	ids := make([]uint, 0, len(w.Entries))
	for _, e := range w.Entries {
		ids = append(ids, e.BookID)
	}
	return ids
}

// ContainsBook reports whether the wishlist already references the book.
func (w *Wishlist) ContainsBook(bookID uint) bool {
	for _, e := range w.Entries {
		if e.BookID == bookID {
			return true
		}
	}
	return false
}
