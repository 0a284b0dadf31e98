package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelflift/internal/auth"
	"github.com/mrlokans/shelflift/internal/checkout"
	"github.com/mrlokans/shelflift/internal/database"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/wishlists"
	"github.com/mrlokans/shelflift/internal/entities"
)

type wishlistTestEnv struct {
	db      *database.Database
	catalog *catalog.Repository
	router  *gin.Engine
}

// setupWishlistTest wires the wishlist routes over a real database, with a
// stub middleware authenticating every request as the user named in the
// X-Test-User header.
func setupWishlistTest(t *testing.T) (*wishlistTestEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_wishlist_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	catalogRepo := catalog.NewRepository(db.DB)
	wishlistRepo := wishlists.NewRepository(db.DB, catalogRepo)
	checkoutService := checkout.NewService(db.DB, catalogRepo, wishlistRepo, nil)

	controller := NewWishlistController(wishlistRepo, checkoutService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		userID := uint(1)
		if header := c.GetHeader("X-Test-User"); header != "" {
			fmt.Sscanf(header, "%d", &userID)
		}
		c.Set(auth.ContextKeyUserID, userID)
		c.Next()
	})
	router.GET("/api/wishlist", controller.GetWishlist)
	router.GET("/api/wishlists/:id", controller.GetByID)
	router.POST("/api/wishlist/add/:bookId", controller.AddBook)
	router.DELETE("/api/wishlist/remove/:bookId", controller.RemoveBook)
	router.GET("/api/wishlist/books", controller.ListBooks)
	router.POST("/api/wishlist/borrow", controller.Borrow)

	env := &wishlistTestEnv{db: db, catalog: catalogRepo, router: router}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func (e *wishlistTestEnv) createBook(t *testing.T, title string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, AvailableCopies: copies}
	require.NoError(t, e.catalog.CreateBook(book))
	return book
}

func (e *wishlistTestEnv) request(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	e.router.ServeHTTP(w, req)
	return w
}

func TestWishlistController_GetWishlist(t *testing.T) {
	env, cleanup := setupWishlistTest(t)
	defer cleanup()

	w := env.request(t, "GET", "/api/wishlist")

	assert.Equal(t, http.StatusOK, w.Code)

	var wishlist entities.Wishlist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
	assert.Equal(t, entities.WishlistStatusCreated, wishlist.Status)
	assert.Empty(t, wishlist.Entries)
}

func TestWishlistController_GetByID(t *testing.T) {
	env, cleanup := setupWishlistTest(t)
	defer cleanup()

	book := env.createBook(t, "Hyperion", 1)

	w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", book.ID))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, "POST", "/api/wishlist/borrow")
	require.Equal(t, http.StatusOK, w.Code)

	var borrowed entities.Wishlist
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &borrowed))

	t.Run("resolves an own borrowed wishlist", func(t *testing.T) {
		w := env.request(t, "GET", fmt.Sprintf("/api/wishlists/%d", borrowed.ID))

		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		assert.Equal(t, borrowed.ID, wishlist.ID)
		assert.Equal(t, entities.WishlistStatusBorrowed, wishlist.Status)
	})

	t.Run("another user's wishlist reads as not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, err := http.NewRequest("GET", fmt.Sprintf("/api/wishlists/%d", borrowed.ID), nil)
		require.NoError(t, err)
		req.Header.Set("X-Test-User", "2")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("404 for an unknown wishlist", func(t *testing.T) {
		w := env.request(t, "GET", "/api/wishlists/999")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("400 for a malformed id", func(t *testing.T) {
		w := env.request(t, "GET", "/api/wishlists/abc")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWishlistController_AddBook(t *testing.T) {
	env, cleanup := setupWishlistTest(t)
	defer cleanup()

	book := env.createBook(t, "Dune", 2)
	empty := env.createBook(t, "Drained", 0)

	t.Run("adds a book", func(t *testing.T) {
		w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", book.ID))

		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		require.Len(t, wishlist.Entries, 1)
		assert.Equal(t, book.ID, wishlist.Entries[0].BookID)
	})

	t.Run("repeat add is a no-op success", func(t *testing.T) {
		w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", book.ID))

		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		assert.Len(t, wishlist.Entries, 1)
	})

	t.Run("unknown book is a 404", func(t *testing.T) {
		w := env.request(t, "POST", "/api/wishlist/add/999")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("book with no copies is a 400 naming the book", func(t *testing.T) {
		w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", empty.ID))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "insufficient_copies", resp.Code)
		assert.Contains(t, resp.Error, "Drained")
	})

	t.Run("malformed book ID is a 400", func(t *testing.T) {
		w := env.request(t, "POST", "/api/wishlist/add/not-a-number")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWishlistController_RemoveBook(t *testing.T) {
	env, cleanup := setupWishlistTest(t)
	defer cleanup()

	book := env.createBook(t, "Dune", 1)

	w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", book.ID))
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("removes a present book", func(t *testing.T) {
		w := env.request(t, "DELETE", fmt.Sprintf("/api/wishlist/remove/%d", book.ID))

		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		assert.Empty(t, wishlist.Entries)
	})

	t.Run("removing an absent book succeeds", func(t *testing.T) {
		w := env.request(t, "DELETE", "/api/wishlist/remove/999")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestWishlistController_ListBooks(t *testing.T) {
	env, cleanup := setupWishlistTest(t)
	defer cleanup()

	second := env.createBook(t, "Second", 1)
	first := env.createBook(t, "First", 1)

	w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", first.ID))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", second.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "GET", "/api/wishlist/books")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Books []entities.Book `json:"books"`
		Total int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Books, 2)
	assert.Equal(t, "First", resp.Books[0].Title)
	assert.Equal(t, "Second", resp.Books[1].Title)
}

func TestWishlistController_Borrow(t *testing.T) {
	t.Run("borrows the whole wishlist", func(t *testing.T) {
		env, cleanup := setupWishlistTest(t)
		defer cleanup()

		book := env.createBook(t, "Dune", 1)

		w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", book.ID))
		require.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, "POST", "/api/wishlist/borrow")
		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		assert.Equal(t, entities.WishlistStatusBorrowed, wishlist.Status)

		stored, err := env.catalog.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.AvailableCopies)
	})

	t.Run("an infeasible book fails the whole borrow with a 400", func(t *testing.T) {
		env, cleanup := setupWishlistTest(t)
		defer cleanup()

		feasible := env.createBook(t, "Feasible", 1)
		contested := env.createBook(t, "Contested", 1)

		w := env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", feasible.ID))
		require.Equal(t, http.StatusOK, w.Code)
		w = env.request(t, "POST", fmt.Sprintf("/api/wishlist/add/%d", contested.ID))
		require.Equal(t, http.StatusOK, w.Code)

		// Another user takes the contested book first.
		wOther := httptest.NewRecorder()
		req, err := http.NewRequest("POST", fmt.Sprintf("/api/wishlist/add/%d", contested.ID), nil)
		require.NoError(t, err)
		req.Header.Set("X-Test-User", "2")
		env.router.ServeHTTP(wOther, req)
		require.Equal(t, http.StatusOK, wOther.Code)

		wOther = httptest.NewRecorder()
		req, err = http.NewRequest("POST", "/api/wishlist/borrow", nil)
		require.NoError(t, err)
		req.Header.Set("X-Test-User", "2")
		env.router.ServeHTTP(wOther, req)
		require.Equal(t, http.StatusOK, wOther.Code)

		w = env.request(t, "POST", "/api/wishlist/borrow")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "insufficient_copies", resp.Code)
		assert.Contains(t, resp.Error, "Contested")

		// Nothing was reserved for the failed borrow.
		stored, err := env.catalog.GetBookByID(feasible.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.AvailableCopies)
	})

	t.Run("an empty wishlist borrows successfully", func(t *testing.T) {
		env, cleanup := setupWishlistTest(t)
		defer cleanup()

		w := env.request(t, "POST", "/api/wishlist/borrow")

		assert.Equal(t, http.StatusOK, w.Code)

		var wishlist entities.Wishlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wishlist))
		assert.Equal(t, entities.WishlistStatusBorrowed, wishlist.Status)
	})
}
