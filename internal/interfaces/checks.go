package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/shelflift/internal/checkout"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/history"
	"github.com/mrlokans/shelflift/internal/database/wishlists"
	"github.com/mrlokans/shelflift/internal/http"
	"github.com/mrlokans/shelflift/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// CatalogStore implementations
var _ http.CatalogStore = (*catalog.Repository)(nil)

// WishlistStore implementations
var _ http.WishlistStore = (*wishlists.Repository)(nil)

// HistoryRecorder implementations
var _ http.HistoryRecorder = (*history.Repository)(nil)

// =============================================================================
// Checkout
// =============================================================================

// CheckoutService implementations
var _ http.CheckoutService = (*checkout.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// WishlistPruner implementations
var _ tasks.WishlistPruner = (*wishlists.Repository)(nil)
