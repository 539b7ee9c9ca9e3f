package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/database"
	"github.com/mrlokans/crudgate/internal/database/loginsessions"
	"github.com/mrlokans/crudgate/internal/services"
)

// PurgeSessionsCommand deletes expired login sessions once, without going
// through the task queue.
type PurgeSessionsCommand struct {
	DatabasePath string

	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func NewPurgeSessionsCommand(cfg *config.Config, log *zap.Logger) *PurgeSessionsCommand {
	return &PurgeSessionsCommand{cfg: cfg, log: log, out: os.Stdout}
}

func (cmd *PurgeSessionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the sqlite database (ignored for postgres)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge-sessions [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete login sessions whose expiry has passed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PurgeSessionsCommand) Run(ctx context.Context) error {
	dbCfg := cmd.cfg.Database
	if cmd.DatabasePath != "" {
		dbCfg.Path = cmd.DatabasePath
	}

	db, err := database.NewDatabase(dbCfg, cmd.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	now := cmd.cfg.App.Clock()
	backend, err := loginsessions.NewBackend(cmd.cfg.Session.Backend, db.DB, now)
	if err != nil {
		return err
	}

	removed, err := services.NewSessionPurgeService(backend, now, cmd.log).PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	fmt.Fprintf(cmd.out, "Removed %d expired sessions\n", removed)
	return nil
}
