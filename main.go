package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"postboard/admin"
	"postboard/app/config"
	"postboard/app/logger"
	"postboard/app/repositories"
	"postboard/app/routes"
	"postboard/app/services"
)

const CliVersion = "1.0.0"

// exit is swapped out by tests.
var exit = os.Exit

func main() {
	exit(RealMain(os.Args[1:]))
}

// RealMain dispatches a command line (without the program name) and returns
// the process exit code.
func RealMain(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "help":
		printHelp()
		return 0
	case "version":
		fmt.Printf("postboard version %s\n", CliVersion)
		return 0
	case "serve":
		configPath, rest, err := parseConfigFlag(args[1:])
		if err != nil || len(rest) > 0 {
			fmt.Println("Error: usage is serve [--config <file>]")
			return 1
		}
		return serve(configPath)
	case "db":
		configPath, rest, err := parseConfigFlag(args[1:])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return 1
		}
		cfg, log, err := setup(configPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return 1
		}
		return admin.HandleCommand(context.Background(), cfg, log, rest)
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: postboard <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--config <file>]        Run the blog HTTP service.
  db <command> [--config <file>] Database management:
                                   init, clean, backup, restore <file>, seed <fixtures.yaml>
`
	fmt.Println(helpText)
}

// parseConfigFlag pulls "--config <file>" (or "--config=<file>") out of args
// and returns the remaining arguments in order.
func parseConfigFlag(args []string) (string, []string, error) {
	var path string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			if i+1 >= len(args) {
				return "", nil, errors.New("--config requires a file path")
			}
			path = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}
	return path, rest, nil
}

// setup loads the configuration and builds the root logger.
func setup(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if cfg.Logger.ServiceVersion == "" {
		cfg.Logger.ServiceVersion = CliVersion
	}
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// serve runs the HTTP service until SIGINT or SIGTERM.
func serve(configPath string) int {
	cfg, log, err := setup(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repositories.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
		return 1
	}
	defer store.Close()

	svc := services.New(store, log)
	router := routes.SetupRoutes(svc, store, cfg.Listing.PageSize, log)

	if err := runServer(ctx, newServer(cfg.Server, router), cfg.Server.ShutdownTimeout, log); err != nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

func newServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// runServer serves until ctx is done, then drains in-flight requests for at
// most shutdownTimeout.
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting postboard service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
