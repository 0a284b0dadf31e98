package wishlists

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelflift/internal/database"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/entities"
)

func setupTestDB(t *testing.T) (*database.Database, *Repository, *catalog.Repository, func()) {
	t.Helper()
	dbPath := "./test_wishlists_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	catalogRepo := catalog.NewRepository(db.DB)
	repo := NewRepository(db.DB, catalogRepo)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, repo, catalogRepo, cleanup
}

func createTestBook(t *testing.T, catalogRepo *catalog.Repository, title string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, AvailableCopies: copies}
	require.NoError(t, catalogRepo.CreateBook(book))
	return book
}

func TestRepository_GetOrCreateActive(t *testing.T) {
	t.Run("creates an empty wishlist on first contact", func(t *testing.T) {
		_, repo, _, cleanup := setupTestDB(t)
		defer cleanup()

		wishlist, err := repo.GetOrCreateActive(1)

		require.NoError(t, err)
		assert.NotZero(t, wishlist.ID)
		assert.Equal(t, uint(1), wishlist.UserID)
		assert.Equal(t, entities.WishlistStatusCreated, wishlist.Status)
		assert.Empty(t, wishlist.Entries)
	})

	t.Run("returns the same wishlist on repeat calls", func(t *testing.T) {
		_, repo, _, cleanup := setupTestDB(t)
		defer cleanup()

		first, err := repo.GetOrCreateActive(1)
		require.NoError(t, err)

		second, err := repo.GetOrCreateActive(1)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("users get separate wishlists", func(t *testing.T) {
		_, repo, _, cleanup := setupTestDB(t)
		defer cleanup()

		mine, err := repo.GetOrCreateActive(1)
		require.NoError(t, err)

		theirs, err := repo.GetOrCreateActive(2)
		require.NoError(t, err)

		assert.NotEqual(t, mine.ID, theirs.ID)
	})

	t.Run("concurrent first-time calls produce exactly one wishlist", func(t *testing.T) {
		db, repo, _, cleanup := setupTestDB(t)
		defer cleanup()

		const callers = 8
		var wg sync.WaitGroup
		ids := make([]uint, callers)
		errs := make([]error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				wishlist, err := repo.GetOrCreateActive(1)
				errs[i] = err
				if err == nil {
					ids[i] = wishlist.ID
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}

		var count int64
		err := db.DB.Model(&entities.Wishlist{}).Where("user_id = ?", 1).Count(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRepository_AddBook(t *testing.T) {
	t.Run("appends a book reference", func(t *testing.T) {
		_, repo, catalogRepo, cleanup := setupTestDB(t)
		defer cleanup()

		book := createTestBook(t, catalogRepo, "Dune", 3)

		wishlist, err := repo.AddBook(1, book.ID)

		require.NoError(t, err)
		require.Len(t, wishlist.Entries, 1)
		assert.Equal(t, book.ID, wishlist.Entries[0].BookID)

		// Adding reserves nothing.
		stored, err := catalogRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.AvailableCopies)
	})

	t.Run("adding the same book twice is a no-op success", func(t *testing.T) {
		_, repo, catalogRepo, cleanup := setupTestDB(t)
		defer cleanup()

		book := createTestBook(t, catalogRepo, "Dune", 3)

		_, err := repo.AddBook(1, book.ID)
		require.NoError(t, err)

		wishlist, err := repo.AddBook(1, book.ID)
		require.NoError(t, err)
		assert.Len(t, wishlist.Entries, 1)
	})

	t.Run("rejects unknown books", func(t *testing.T) {
		_, repo, _, cleanup := setupTestDB(t)
		defer cleanup()

		_, err := repo.AddBook(1, 999)
		assert.ErrorIs(t, err, catalog.ErrBookNotFound)
	})

	t.Run("rejects books with no available copies", func(t *testing.T) {
		_, repo, catalogRepo, cleanup := setupTestDB(t)
		defer cleanup()

		book := createTestBook(t, catalogRepo, "Out of Stock", 0)

		_, err := repo.AddBook(1, book.ID)

		var copiesErr *catalog.CopiesError
		require.ErrorAs(t, err, &copiesErr)
		assert.Equal(t, book.ID, copiesErr.BookID)
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		_, repo, catalogRepo, cleanup := setupTestDB(t)
		defer cleanup()

		third := createTestBook(t, catalogRepo, "Third", 1)
		first := createTestBook(t, catalogRepo, "First", 1)
		second := createTestBook(t, catalogRepo, "Second", 1)

		_, err := repo.AddBook(1, first.ID)
		require.NoError(t, err)
		_, err = repo.AddBook(1, second.ID)
		require.NoError(t, err)
		wishlist, err := repo.AddBook(1, third.ID)
		require.NoError(t, err)

		require.Len(t, wishlist.Entries, 3)
		assert.Equal(t, []uint{first.ID, second.ID, third.ID}, wishlist.BookIDs())
	})

	t.Run("preserves insertion order across removals", func(t *testing.T) {
		_, repo, catalogRepo, cleanup := setupTestDB(t)
		defer cleanup()

		a := createTestBook(t, catalogRepo, "A", 1)
		b := createTestBook(t, catalogRepo, "B", 1)
		c := createTestBook(t, catalogRepo, "C", 1)
		d := createTestBook(t, catalogRepo, "D", 1)
		e := createTestBook(t, catalogRepo, "E", 1)

		for _, book := range []*entities.Book{a, b, c, d} {
			_, err := repo.AddBook(1, book.ID)
			require.NoError(t, err)
		}
		_, err := repo.RemoveBook(1, a.ID)
		require.NoError(t, err)
		_, err = repo.RemoveBook(1, b.ID)
		require.NoError(t, err)

		wishlist, err := repo.AddBook(1, e.ID)
		require.NoError(t, err)

		require.Len(t, wishlist.Entries, 3)
		assert.Equal(t, []uint{c.ID, d.ID, e.ID}, wishlist.BookIDs())
	})
}

func TestRepository_RemoveBook(t *testing.T) {
	_, repo, catalogRepo, cleanup := setupTestDB(t)
	defer cleanup()

	keep := createTestBook(t, catalogRepo, "Keep", 1)
	drop := createTestBook(t, catalogRepo, "Drop", 1)

	_, err := repo.AddBook(1, keep.ID)
	require.NoError(t, err)
	_, err = repo.AddBook(1, drop.ID)
	require.NoError(t, err)

	t.Run("removes a present book", func(t *testing.T) {
		wishlist, err := repo.RemoveBook(1, drop.ID)

		require.NoError(t, err)
		require.Len(t, wishlist.Entries, 1)
		assert.Equal(t, keep.ID, wishlist.Entries[0].BookID)
	})

	t.Run("removing an absent book is a no-op success", func(t *testing.T) {
		wishlist, err := repo.RemoveBook(1, drop.ID)

		require.NoError(t, err)
		assert.Len(t, wishlist.Entries, 1)
	})

	t.Run("removing an unknown book is a no-op success", func(t *testing.T) {
		wishlist, err := repo.RemoveBook(1, 999)

		require.NoError(t, err)
		assert.Len(t, wishlist.Entries, 1)
	})
}

func TestRepository_ListBooks(t *testing.T) {
	_, repo, catalogRepo, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("lazily creates the wishlist", func(t *testing.T) {
		books, err := repo.ListBooks(1)

		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("returns books in insertion order", func(t *testing.T) {
		b := createTestBook(t, catalogRepo, "Beta", 1)
		a := createTestBook(t, catalogRepo, "Alpha", 1)

		_, err := repo.AddBook(1, b.ID)
		require.NoError(t, err)
		_, err = repo.AddBook(1, a.ID)
		require.NoError(t, err)

		books, err := repo.ListBooks(1)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "Beta", books[0].Title)
		assert.Equal(t, "Alpha", books[1].Title)
	})
}

func TestRepository_MarkBorrowed(t *testing.T) {
	_, repo, catalogRepo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, catalogRepo, "Borrowed", 1)
	_, err := repo.AddBook(1, book.ID)
	require.NoError(t, err)

	wishlist, err := repo.GetOrCreateActive(1)
	require.NoError(t, err)

	t.Run("clears the book set and flips the status", func(t *testing.T) {
		err := repo.MarkBorrowed(wishlist)

		require.NoError(t, err)
		assert.Equal(t, entities.WishlistStatusBorrowed, wishlist.Status)
		assert.Empty(t, wishlist.Entries)

		stored, err := repo.GetWishlistByID(wishlist.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WishlistStatusBorrowed, stored.Status)
		assert.Empty(t, stored.Entries)
	})

	t.Run("a borrowed wishlist cannot be borrowed again", func(t *testing.T) {
		stored, err := repo.GetWishlistByID(wishlist.ID)
		require.NoError(t, err)

		err = repo.MarkBorrowed(stored)
		assert.ErrorIs(t, err, ErrWishlistBorrowed)
	})

	t.Run("the next active wishlist is a fresh one", func(t *testing.T) {
		fresh, err := repo.GetOrCreateActive(1)

		require.NoError(t, err)
		assert.NotEqual(t, wishlist.ID, fresh.ID)
		assert.Equal(t, entities.WishlistStatusCreated, fresh.Status)
		assert.Empty(t, fresh.Entries)
	})
}

func TestRepository_MutationsAfterBorrow(t *testing.T) {
	_, repo, catalogRepo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, catalogRepo, "Locked", 2)

	wishlist, err := repo.GetOrCreateActive(1)
	require.NoError(t, err)
	require.NoError(t, repo.MarkBorrowed(wishlist))

	// AddBook and RemoveBook target the active wishlist, so after a borrow
	// they operate on a freshly created one rather than the terminal record.
	fresh, err := repo.AddBook(1, book.ID)
	require.NoError(t, err)
	assert.NotEqual(t, wishlist.ID, fresh.ID)
	assert.Len(t, fresh.Entries, 1)
}

func TestRepository_DeleteStaleEmpty(t *testing.T) {
	db, repo, catalogRepo, cleanup := setupTestDB(t)
	defer cleanup()

	book := createTestBook(t, catalogRepo, "Held", 1)

	// Stale and empty: eligible.
	stale, err := repo.GetOrCreateActive(1)
	require.NoError(t, err)

	// Stale but holding a book: kept.
	_, err = repo.AddBook(2, book.ID)
	require.NoError(t, err)
	holding, err := repo.GetOrCreateActive(2)
	require.NoError(t, err)

	// Borrowed history: kept regardless of age.
	borrowed, err := repo.GetOrCreateActive(3)
	require.NoError(t, err)
	require.NoError(t, repo.MarkBorrowed(borrowed))

	// Fresh and empty: kept.
	fresh, err := repo.GetOrCreateActive(4)
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	for _, id := range []uint{stale.ID, holding.ID, borrowed.ID} {
		err := db.DB.Model(&entities.Wishlist{}).Where("id = ?", id).
			UpdateColumn("updated_at", past).Error
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteStaleEmpty(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetWishlistByID(stale.ID)
	assert.ErrorIs(t, err, ErrWishlistNotFound)

	for _, id := range []uint{holding.ID, borrowed.ID, fresh.ID} {
		_, err := repo.GetWishlistByID(id)
		assert.NoError(t, err)
	}
}
