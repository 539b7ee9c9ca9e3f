package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/database"
	"github.com/mrlokans/crudgate/internal/database/users"
	"github.com/mrlokans/crudgate/internal/entities"
	"github.com/mrlokans/crudgate/internal/services"
)

// CreateUserCommand seeds an account directly in the database.
type CreateUserCommand struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         string
	Superuser    bool
	DatabasePath string

	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func NewCreateUserCommand(cfg *config.Config, log *zap.Logger) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg, log: log, out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address, used as the login name (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (required)")
	fs.StringVar(&cmd.FirstName, "first-name", "", "First name")
	fs.StringVar(&cmd.LastName, "last-name", "", "Last name")
	fs.StringVar(&cmd.Role, "role", entities.RoleUser, "Role to grant: admin or user")
	fs.BoolVar(&cmd.Superuser, "superuser", false, "Bypass every permission check")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the sqlite database (ignored for postgres)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account. Roles and permissions are seeded on first start.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -email admin@example.com -password secret -role admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}

	return nil
}

func (cmd *CreateUserCommand) Run(ctx context.Context) error {
	dbCfg := cmd.cfg.Database
	if cmd.DatabasePath != "" {
		dbCfg.Path = cmd.DatabasePath
	}

	db, err := database.NewDatabase(dbCfg, cmd.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	hasher := auth.NewPasswordHasher(cmd.cfg.Auth.PasswordHasher, cmd.cfg.Auth.BcryptCost)
	svc := services.NewUserService(users.NewRepository(db.DB, cmd.log), hasher, cmd.log)

	user, err := svc.Create(ctx, services.UserCreate{
		Email:       cmd.Email,
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Password:    cmd.Password,
		IsSuperuser: cmd.Superuser,
		Role:        cmd.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created user %s (%s)\n", user.Email, user.UUID)
	return nil
}
