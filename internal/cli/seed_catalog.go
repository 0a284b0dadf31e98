package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/shelflift/internal/config"
	"github.com/mrlokans/shelflift/internal/database"
	"github.com/mrlokans/shelflift/internal/database/catalog"
	"github.com/mrlokans/shelflift/internal/database/history"
	"github.com/mrlokans/shelflift/internal/entities"
)

// SeedCatalogCommand loads authors and books from a JSON file into the
// catalog, recording a history entry for every created book.
type SeedCatalogCommand struct {
	FilePath     string
	DatabasePath string
	EditorID     uint
}

type seedFile struct {
	Authors []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Books   []struct {
			Title           string `json:"title"`
			Category        string `json:"category"`
			AvailableCopies int    `json:"available_copies"`
		} `json:"books"`
	} `json:"authors"`
}

func NewSeedCatalogCommand() *SeedCatalogCommand {
	return &SeedCatalogCommand{}
}

func (cmd *SeedCatalogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-catalog", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the seed JSON file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	editorID := fs.Uint("editor", 0, "User ID recorded as the editor in book history")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-catalog -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load authors and books from a JSON file into the catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.EditorID = uint(*editorID)

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *SeedCatalogCommand) Run() error {
	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	catalogRepo := catalog.NewRepository(db.DB)
	historyRepo := history.NewRepository(db.DB)

	var authorCount, bookCount int
	for _, a := range seed.Authors {
		author := &entities.Author{Name: a.Name, Country: a.Country}
		if err := catalogRepo.CreateAuthor(author); err != nil {
			return fmt.Errorf("failed to create author %q: %w", a.Name, err)
		}
		authorCount++

		for _, b := range a.Books {
			book := &entities.Book{
				Title:           b.Title,
				Category:        b.Category,
				AuthorID:        author.ID,
				AvailableCopies: b.AvailableCopies,
			}
			if err := catalogRepo.CreateBook(book); err != nil {
				return fmt.Errorf("failed to create book %q: %w", b.Title, err)
			}
			book.Author = *author
			if err := historyRepo.Record(book, cmd.EditorID); err != nil {
				return fmt.Errorf("failed to record history for %q: %w", b.Title, err)
			}
			bookCount++
		}
	}

	fmt.Printf("Seeded %d authors and %d books\n", authorCount, bookCount)
	return nil
}
