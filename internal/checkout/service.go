// Package checkout turns a user's active wishlist into copy reservations in
// one all-or-nothing database transaction.
package checkout

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/shelflift/internal/audit"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/wishlists"
	"github.com/mrlokans/shelflift/internal/entities"
)

// Service coordinates the checkout transaction over the catalog and wishlist
// repositories.
type Service struct {
	db        *gorm.DB
	catalog   *catalog.Repository
	wishlists *wishlists.Repository
	receipts  *audit.Auditor
}

// NewService creates a checkout service. The auditor may be nil, in which
// case no receipt files are written.
func NewService(db *gorm.DB, catalogRepo *catalog.Repository, wishlistRepo *wishlists.Repository, receipts *audit.Auditor) *Service {
	return &Service{
		db:        db,
		catalog:   catalogRepo,
		wishlists: wishlistRepo,
		receipts:  receipts,
	}
}

// BorrowAll checks out the user's active wishlist.
//
// Every contained book is reserved in wishlist insertion order inside a
// single transaction; the first book that cannot be reserved aborts the
// whole call, rolling back every decrement already applied and leaving the
// wishlist untouched (status, contents). On full success the wishlist's book
// set is cleared and its status becomes borrowed, which is terminal.
//
// An empty wishlist is a legal checkout: nothing is reserved and the empty
// set transitions to borrowed. A wishlist is lazily created if none exists.
func (s *Service) BorrowAll(ctx context.Context, userID uint) (*entities.Wishlist, error) {
	var checked *entities.Wishlist
	var bookIDs []uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wlRepo := s.wishlists.WithTx(tx)
		catRepo := s.catalog.WithTx(tx)

		wishlist, err := wlRepo.GetOrCreateActive(userID)
		if err != nil {
			return err
		}

		bookIDs = wishlist.BookIDs()
		for _, bookID := range bookIDs {
			if _, err := catRepo.ReserveCopy(bookID); err != nil {
				// First infeasible book aborts the transaction; every
				// reservation made above is rolled back with it.
				return err
			}
		}

		if err := wlRepo.MarkBorrowed(wishlist); err != nil {
			return err
		}

		checked = wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.receipts != nil {
		receipt := audit.CheckoutReceipt{
			WishlistID: checked.ID,
			UserID:     userID,
			BookIDs:    bookIDs,
			BorrowedAt: time.Now(),
		}
		if _, err := s.receipts.SaveReceipt(receipt); err != nil {
			// The checkout is committed; a lost receipt is logged, not
			// surfaced.
			log.Printf("Failed to save checkout receipt for wishlist %d: %v", checked.ID, err)
		}
	}

	return checked, nil
}

// CreateWishlist produces a fresh created wishlist without checking for an
// existing active one. Exposed for tests and internal callers; request paths
// go through the wishlist repository's GetOrCreateActive.
func (s *Service) CreateWishlist(userID uint) (*entities.Wishlist, error) {
	return s.wishlists.CreateWishlist(userID)
}
