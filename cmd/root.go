package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/bbtface/internal/config"
	"github.com/andresmejia3/bbtface/internal/store"
	"github.com/spf13/cobra"
)

// Options holds the flags of the match command
type Options struct {
	DescriptorPath string
	Descriptor     string
	MatchThreshold float64
	Limit          int
	Section        string
	Workers        int
	DBSide         bool
}

var (
	// DB is the global database connection shared by subcommands
	DB *store.Store
	// cfg is loaded from the environment before any command runs
	cfg *config.Config
	// dbURL overrides the connection string from the environment
	dbURL string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "bbtface",
	Short:   "Face descriptor gallery and matcher",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if dbURL != "" {
			cfg.Database.URL = dbURL
		}

		var err error
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), cfg.Database.ConnString(), cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			DB.Close()
		}
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: $DATABASE_URL, $POSTGRES_*, or postgres://localhost:5432/faces)")
}
