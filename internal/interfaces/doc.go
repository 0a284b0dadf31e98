// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CatalogStore: Book and author catalog operations (internal/http/books.go)
//   - WishlistStore: Wishlist mutation and listing (internal/http/wishlist.go)
//   - HistoryRecorder: Append-only catalog audit trail (internal/http/books.go)
//
// ## Checkout
//
//   - CheckoutService: Atomic all-or-nothing borrow of a wishlist
//     (internal/http/wishlist.go)
//
// ## Background Tasks
//
//   - WishlistPruner: Removal of stale empty wishlists
//     (internal/tasks/cleanup_wishlists.go)
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check:
//
//     var _ DomainStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
