package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelflift/internal/entities"
)

// CatalogStore defines database operations for catalog management.
type CatalogStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	ListBooks(category string, limit, offset int) ([]entities.Book, int64, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	ListAuthors() ([]entities.Author, error)
}

// HistoryRecorder appends and reads the catalog metadata audit trail.
type HistoryRecorder interface {
	Record(book *entities.Book, editorID uint) error
	HistoryFor(bookID uint) ([]entities.HistoryEntry, error)
}

type BooksController struct {
	store   CatalogStore
	history HistoryRecorder
}

func NewBooksController(store CatalogStore, history HistoryRecorder) *BooksController {
	return &BooksController{store: store, history: history}
}

type bookRequest struct {
	Title           string `json:"title" binding:"required"`
	Category        string `json:"category"`
	AuthorID        uint   `json:"author_id"`
	AvailableCopies int    `json:"available_copies"`
}

// ListBooks returns catalog entries, optionally filtered by category.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	books, total, err := bc.store.ListBooks(c.Query("category"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":  books,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetBook returns a single catalog entry.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook adds a catalog entry and records a history snapshot attributed
// to the acting librarian.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	book := &entities.Book{
		Title:           req.Title,
		Category:        req.Category,
		AuthorID:        req.AuthorID,
		AvailableCopies: req.AvailableCopies,
	}
	if err := bc.store.CreateBook(book); err != nil {
		respondDomainError(c, err, "create book")
		return
	}

	bc.recordHistory(c, book.ID)

	created, err := bc.store.GetBookByID(book.ID)
	if err != nil {
		respondCreated(c, book)
		return
	}
	respondCreated(c, created)
}

// UpdateBook persists librarian edits and records a history snapshot.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	book := &entities.Book{
		ID:              id,
		Title:           req.Title,
		Category:        req.Category,
		AuthorID:        req.AuthorID,
		AvailableCopies: req.AvailableCopies,
	}
	if err := bc.store.UpdateBook(book); err != nil {
		respondDomainError(c, err, "update book")
		return
	}

	bc.recordHistory(c, id)

	updated, err := bc.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get updated book")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// BookHistory returns a book's audit trail, most recent first.
// GET /api/books/:id/history
func (bc *BooksController) BookHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// 404 for unknown books rather than an empty trail
	if _, err := bc.store.GetBookByID(id); err != nil {
		respondDomainError(c, err, "get book for history")
		return
	}

	entries, err := bc.history.HistoryFor(id)
	if err != nil {
		respondInternalError(c, err, "get book history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "total": len(entries)})
}

// ListAuthors returns all authors.
// GET /api/authors
func (bc *BooksController) ListAuthors(c *gin.Context) {
	authors, err := bc.store.ListAuthors()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "total": len(authors)})
}

// recordHistory appends a metadata snapshot after a successful catalog
// write. History failures are logged, not surfaced; the catalog write has
// already committed.
func (bc *BooksController) recordHistory(c *gin.Context, bookID uint) {
	book, err := bc.store.GetBookByID(bookID)
	if err != nil {
		return
	}
	if err := bc.history.Record(book, GetUserID(c)); err != nil {
		log.Printf("Failed to record history for book %d: %v", bookID, err)
	}
}
