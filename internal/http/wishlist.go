package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelflift/internal/entities"
)

// WishlistStore defines database operations for wishlist management.
type WishlistStore interface {
	GetOrCreateActive(userID uint) (*entities.Wishlist, error)
	GetWishlistByID(id uint) (*entities.Wishlist, error)
	AddBook(userID, bookID uint) (*entities.Wishlist, error)
	RemoveBook(userID, bookID uint) (*entities.Wishlist, error)
	ListBooks(userID uint) ([]entities.Book, error)
}

// CheckoutService performs the atomic borrow of a whole wishlist.
type CheckoutService interface {
	BorrowAll(ctx context.Context, userID uint) (*entities.Wishlist, error)
}

type WishlistController struct {
	store    WishlistStore
	checkout CheckoutService
}

func NewWishlistController(store WishlistStore, checkout CheckoutService) *WishlistController {
	return &WishlistController{store: store, checkout: checkout}
}

// GetWishlist returns the user's active wishlist, creating an empty one on
// first contact.
// GET /api/wishlist
func (wc *WishlistController) GetWishlist(c *gin.Context) {
	wishlist, err := wc.store.GetOrCreateActive(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get wishlist")
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// GetByID returns one of the user's wishlists by ID, including borrowed
// ones, so past checkouts referenced by receipts stay resolvable. Other
// users' wishlists read as not found.
// GET /api/wishlists/:id
func (wc *WishlistController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	wishlist, err := wc.store.GetWishlistByID(id)
	if err != nil {
		respondDomainError(c, err, "get wishlist by id")
		return
	}
	if wishlist.UserID != GetUserID(c) {
		respondNotFound(c, "wishlist")
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// AddBook adds a book reference to the active wishlist. Adding a book that
// is already present is a no-op success.
// POST /api/wishlist/add/:bookId
func (wc *WishlistController) AddBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	wishlist, err := wc.store.AddBook(GetUserID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "add book to wishlist")
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// RemoveBook removes a book reference from the active wishlist. Removing an
// absent book is a no-op success.
// DELETE /api/wishlist/remove/:bookId
func (wc *WishlistController) RemoveBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	wishlist, err := wc.store.RemoveBook(GetUserID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "remove book from wishlist")
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

// ListBooks returns the active wishlist's books in insertion order.
// GET /api/wishlist/books
func (wc *WishlistController) ListBooks(c *gin.Context) {
	books, err := wc.store.ListBooks(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list wishlist books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

// Borrow checks out the whole wishlist atomically. On any failure no copy
// counter changes and the wishlist keeps its contents; the response names
// the first infeasible book.
// POST /api/wishlist/borrow
func (wc *WishlistController) Borrow(c *gin.Context) {
	wishlist, err := wc.checkout.BorrowAll(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "borrow wishlist")
		return
	}
	c.JSON(http.StatusOK, wishlist)
}
