package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/book-exchange-server/internal/api"
	"github.com/rongwang/book-exchange-server/internal/cache"
	"github.com/rongwang/book-exchange-server/internal/config"
	"github.com/rongwang/book-exchange-server/internal/repository"
	"github.com/rongwang/book-exchange-server/internal/seed"
	"github.com/rongwang/book-exchange-server/internal/service"
	"github.com/rongwang/book-exchange-server/internal/utils"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bookexchange",
		Short:        "Book exchange REST server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "initdb",
			Short: "Create the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInitDB(cmd.OutOrStdout())
			},
		},
		newSeedCmd(),
	)
	return root
}

func newSeedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, books and addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", opts.Users, "number of users")
	cmd.Flags().IntVar(&opts.Books, "books", opts.Books, "number of books")
	cmd.Flags().IntVar(&opts.Addresses, "addresses", opts.Addresses, "number of addresses")
	cmd.Flags().IntVar(&opts.LibrarySize, "library-size", opts.LibrarySize, "maximum books per library")
	cmd.Flags().IntVar(&opts.WishlistSize, "wishlist-size", opts.WishlistSize, "maximum books per wishlist")
	cmd.Flags().Int64Var(&opts.RandomSeed, "seed", 0, "random seed, 0 for a random one")
	return cmd
}

// app is the wired dependency graph shared by all commands
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	db     *sqlx.DB
	cache  *cache.BookCache
	svc    service.Service
}

func newApp(ctx context.Context) (*app, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := utils.NewLogger(cfg.Log.Level)

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	// Create repository
	repo := repository.NewSQLRepository(db)

	a := &app{cfg: cfg, logger: logger, db: db}

	// The cache is optional; without Redis every read hits the database
	var bookCache service.BookCache
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn("book cache disabled", "error", err)
		} else {
			a.cache = cache.NewBookCache(client, cfg.Cache.TTL, logger)
			bookCache = a.cache
		}
	}

	// Create service
	a.svc = service.NewDefaultService(repo, bookCache, logger)
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close cache", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create API handler and router
	handler := api.NewHandler(a.svc, a.logger)
	router := api.NewRouter(handler, a.logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", srv.Addr, "driver", a.cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}

	a.logger.Info("shutting down server", "timeout", a.cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("server exiting")
	return nil
}

func runInitDB(out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLoggerWithWriter(out, cfg.Log.Level)

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	logger.Info("schema ready", "driver", cfg.Database.Driver)
	return nil
}

func runSeed(ctx context.Context, opts seed.Options) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := seed.NewSeeder(a.svc, opts.RandomSeed, a.logger).Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d users, %d books, %d addresses, %d library entries, %d wishlist entries\n",
		sum.Users, sum.Books, sum.Addresses, sum.LibraryEntries, sum.WishlistEntries)
	return nil
}
