package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/shelflift/internal/auth"
	"github.com/mrlokans/shelflift/internal/config"
	"github.com/mrlokans/shelflift/internal/database"
	"github.com/mrlokans/shelflift/internal/database/users"
	"github.com/mrlokans/shelflift/internal/entities"
)

// CreateUserCommand creates a user account from the command line.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
	WithToken    bool
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (required)")
	fs.StringVar(&cmd.Role, "role", "patron", "Account role: patron or librarian")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.WithToken, "with-token", false, "Also issue an API token and print it once")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <addr> -password <pw> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account. Librarians may edit the catalog; patrons may\n")
		fmt.Fprintf(os.Stderr, "only manage their wishlist and borrow books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("flags -username, -email and -password are required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id=%d, role=%s)\n", user.Username, user.ID, user.Role)

	if cmd.WithToken {
		token, err := service.GenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		fmt.Printf("API token (store it now, it is not shown again):\n%s\n", token)
	}

	return nil
}
