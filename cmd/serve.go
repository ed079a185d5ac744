package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andresmejia3/bbtface/internal/utils"
	"github.com/andresmejia3/bbtface/internal/web"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the face recognition web server.
It serves the recognition page, the stored faces as JSON, and a match endpoint
that ranks a posted descriptor against the gallery.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default $PORT or 3000)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default $HOST or all interfaces)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	// Refuse to start without a working database
	now, err := DB.Ping(ctx)
	if err != nil {
		utils.ShowError("Database connection error", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "✅ Connected to PostgreSQL at: %s\n", now.Local().Format(time.RFC3339))

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}

	handler := web.NewFacesHandler(DB, cfg.Match.Dim, cfg.Match.Threshold, cfg.Match.Workers)
	server := web.NewServer(handler, host, port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			utils.ShowError("Web server failed", err)
		}
		return err
	case <-ctx.Done():
	}

	// The root context is already cancelled here, so shutdown gets its own deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
