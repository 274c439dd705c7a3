package admin

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"postboard/app/config"
	"postboard/app/repositories"
	"postboard/app/services"
)

// HandleCommand runs a database subcommand and returns an exit code.
func HandleCommand(ctx context.Context, cfg *config.Config, logger zerolog.Logger, args []string) int {
	if len(args) < 1 {
		printDbHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "init":
		return initDb(ctx, cfg, logger)
	case "clean":
		return clean(ctx, cfg, logger)
	case "backup":
		return backup(cfg, logger)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, logger, args[1])
	case "seed":
		if len(args) < 2 {
			fmt.Println("Error: fixtures file path required for seed")
			return 1
		}
		return seed(ctx, cfg, logger, args[1])
	case "help":
		printDbHelp()
		return 0
	default:
		fmt.Printf("Unknown db command: %s\n\n", cmd)
		printDbHelp()
		return 1
	}
}

// printDbHelp prints help for database subcommands.
func printDbHelp() {
	helpText := `Usage: postboard db <command> [--config <file>]

Commands:
  init                            Initialize a new empty database
  clean                           Clean the database
  backup                          Create a compressed backup of the database (badger only)
  restore <file>                  Restore database from backup (badger only)
  seed <fixtures.yaml>            Load groups, authors and posts from a YAML file
  help                            Display this help message
`
	fmt.Println(helpText)
}

// confirm asks a yes/no question on stdin; anything but y/Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// databaseExists reports whether the configured database has been created.
// Postgres is always considered present.
func databaseExists(cfg config.StorageConfig) bool {
	var path string
	switch cfg.Driver {
	case repositories.DialectPostgres:
		return true
	case repositories.DialectSQLite:
		path = cfg.SQLitePath
	default:
		path = cfg.BadgerPath
	}
	_, err := os.Stat(path)
	return err == nil
}

// initDb creates the database and its schema.
func initDb(ctx context.Context, cfg *config.Config, logger zerolog.Logger) int {
	if cfg.Storage.Driver != repositories.DialectPostgres && databaseExists(cfg.Storage) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	store, err := repositories.Open(ctx, cfg.Storage, logger)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Printf("Database initialized successfully (%s)\n", store.Driver)
	return 0
}

// clean removes the database after confirmation.
func clean(ctx context.Context, cfg *config.Config, logger zerolog.Logger) int {
	if !databaseExists(cfg.Storage) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 0
	}

	var err error
	switch cfg.Storage.Driver {
	case repositories.DialectPostgres:
		var ss *repositories.SQLStore
		ss, err = repositories.OpenPostgres(ctx, cfg.Storage.PostgresDSN, logger)
		if err == nil {
			err = ss.DropSchema(ctx)
			ss.Close()
		}
	case repositories.DialectSQLite:
		err = os.Remove(cfg.Storage.SQLitePath)
	default:
		err = os.RemoveAll(cfg.Storage.BadgerPath)
	}
	if err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

func requireBadger(cfg config.StorageConfig) error {
	if cfg.Driver != "" && cfg.Driver != "badger" {
		return fmt.Errorf("%s driver: %w", cfg.Driver, repositories.ErrUnsupported)
	}
	return nil
}

// backup creates a compressed backup of the badger database.
func backup(cfg *config.Config, logger zerolog.Logger) int {
	if err := requireBadger(cfg.Storage); err != nil {
		fmt.Printf("Backup is not available: %v\n", err)
		return 1
	}
	if !databaseExists(cfg.Storage) {
		fmt.Println("No database exists to backup")
		return 1
	}

	bs, err := repositories.OpenBadger(cfg.Storage.BadgerPath, false, logger)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer bs.Close()

	res, err := Backup(bs.DB(), cfg.Storage.BackupDir, time.Now())
	if err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	logger.Info().Str("path", res.Path).Int64("bytes", res.Size).Str("sha3", res.Digest).Msg("backup written")
	fmt.Printf("Database backed up successfully to %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Size)))
	return 0
}

// restore replaces the badger database with the contents of a backup.
func restore(cfg *config.Config, logger zerolog.Logger, backupFile string) int {
	if err := requireBadger(cfg.Storage); err != nil {
		fmt.Printf("Restore is not available: %v\n", err)
		return 1
	}

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}
	if err := VerifyBackup(backupFile); err != nil {
		fmt.Printf("Backup file failed verification: %v\n", err)
		return 1
	}

	dbPath := cfg.Storage.BadgerPath
	if databaseExists(cfg.Storage) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	bs, err := repositories.OpenBadger(dbPath, false, logger)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer bs.Close()

	if err := Restore(bs.DB(), backupFile); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// seed loads YAML fixtures through the services.
func seed(ctx context.Context, cfg *config.Config, logger zerolog.Logger, path string) int {
	fx, err := LoadFixtures(path)
	if err != nil {
		fmt.Printf("Failed to read fixtures: %v\n", err)
		return 1
	}

	store, err := repositories.Open(ctx, cfg.Storage, logger)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	rep, err := Seed(ctx, services.New(store, logger), fx)
	if err != nil {
		if fe := services.FieldErrors(err); len(fe) > 0 {
			fmt.Printf("Failed to seed database: %v %v\n", err, fe)
		} else {
			fmt.Printf("Failed to seed database: %v\n", err)
		}
		return 1
	}

	fmt.Printf("Database seeded: %d groups, %d authors, %d posts (%d existing skipped)\n",
		rep.Groups, rep.Authors, rep.Posts, rep.Skipped)
	return 0
}
