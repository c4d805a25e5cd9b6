package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/logging"
	"github.com/marcus/bizdesk/internal/mockapi"
)

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Run a local development backend",
	Long: `Starts a REST backend with the collections the console uses, stored in
SQLite. Lookup collections and an administrator account are seeded on first
start.

With --db ":memory:" (the default) data is lost on exit.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE:    runMockAPI,
}

func init() {
	rootCmd.AddCommand(mockAPICmd)
	mockAPICmd.Flags().StringP("addr", "a", "localhost:8080", "Address to listen on")
	mockAPICmd.Flags().String("db", ":memory:", "SQLite database path")
	mockAPICmd.Flags().String("static-token", "", "Extra token bound to the administrator")
	mockAPICmd.Flags().String("admin-email", "admin@example.com", "Administrator email")
	mockAPICmd.Flags().String("admin-password", "admin", "Administrator password")
}

func runMockAPI(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	dbPath, _ := cmd.Flags().GetString("db")
	token, _ := cmd.Flags().GetString("static-token")
	email, _ := cmd.Flags().GetString("admin-email")
	password, _ := cmd.Flags().GetString("admin-password")
	debug, _ := cmd.Flags().GetBool("debug")

	// the server owns no terminal, so it logs to stderr
	log, err := logging.New(logging.Options{Debug: debug})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := mockapi.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	srv := mockapi.New(store, mockapi.Options{
		Token:         token,
		AdminEmail:    email,
		AdminPassword: password,
		Log:           log,
	})
	if err := srv.Seed(cmd.Context()); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	fmt.Fprintf(os.Stderr, "bizdesk mock-api listening on http://%s\n", ln.Addr())
	fmt.Fprintf(os.Stderr, "  database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  login:    %s / %s\n", email, password)

	httpServer := &http.Server{
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	fmt.Fprintf(os.Stderr, "bizdesk mock-api stopped\n")
	return nil
}
