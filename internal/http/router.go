package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelflift/internal/auth"
	"github.com/mrlokans/shelflift/internal/database"
)

// RouterConfig receives all router dependencies, keeping NewRouter's
// signature stable as the surface grows.
type RouterConfig struct {
	Database *database.Database
	Version  string

	WishlistStore WishlistStore
	Checkout      CheckoutService
	CatalogStore  CatalogStore
	History       HistoryRecorder

	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject the default identity
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		router.POST("/api/auth/login", authController.Login)
		router.POST("/api/auth/logout", authController.Logout)
		router.POST("/api/auth/token", authController.GenerateToken)
		router.DELETE("/api/auth/token", authController.RevokeToken)
	}

	wishlistController := NewWishlistController(cfg.WishlistStore, cfg.Checkout)
	router.GET("/api/wishlist", wishlistController.GetWishlist)
	router.GET("/api/wishlists/:id", wishlistController.GetByID)
	router.POST("/api/wishlist/add/:bookId", wishlistController.AddBook)
	router.DELETE("/api/wishlist/remove/:bookId", wishlistController.RemoveBook)
	router.GET("/api/wishlist/books", wishlistController.ListBooks)
	router.POST("/api/wishlist/borrow", wishlistController.Borrow)

	booksController := NewBooksController(cfg.CatalogStore, cfg.History)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.GET("/api/authors", booksController.ListAuthors)

	// Catalog writes and the audit trail are librarian-only
	librarian := router.Group("/api", auth.LibrarianRequired())
	librarian.POST("/books", booksController.CreateBook)
	librarian.PUT("/books/:id", booksController.UpdateBook)
	librarian.GET("/books/:id/history", booksController.BookHistory)

	return router
}
