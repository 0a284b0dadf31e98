package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrAuthorNotFound     = errors.New("author not found")
	ErrInvalidCopyCount   = errors.New("available copies cannot be negative")
	ErrTitleRequired      = errors.New("book title is required")
	ErrInsufficientCopies = errors.New("no copies available")
)

// CopiesError reports which book could not be reserved. It unwraps to
// ErrInsufficientCopies so callers can branch with errors.Is while the HTTP
// layer surfaces the offending title.
type CopiesError struct {
	BookID uint
	Title  string
}

func (e *CopiesError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("no copies of %q (book %d) available", e.Title, e.BookID)
	}
	return fmt.Sprintf("no copies of book %d available", e.BookID)
}

func (e *CopiesError) Unwrap() error {
	return ErrInsufficientCopies
}
