package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelflift/internal/auth"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/wishlists"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError maps the closed set of catalog/wishlist outcomes onto
// HTTP statuses: unresolved references are 404, infeasible or invalid-state
// mutations are 400, everything else is a 500.
func respondDomainError(c *gin.Context, err error, context string) {
	var copiesErr *catalog.CopiesError

	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, catalog.ErrAuthorNotFound):
		respondNotFound(c, "author")
	case errors.Is(err, wishlists.ErrWishlistNotFound):
		respondNotFound(c, "wishlist")
	case errors.As(err, &copiesErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: copiesErr.Error(),
			Code:  "insufficient_copies",
		})
	case errors.Is(err, catalog.ErrInsufficientCopies):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "insufficient_copies",
		})
	case errors.Is(err, wishlists.ErrWishlistBorrowed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "wishlist_borrowed",
		})
	case errors.Is(err, catalog.ErrInvalidCopyCount),
		errors.Is(err, catalog.ErrTitleRequired):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns 0, false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
