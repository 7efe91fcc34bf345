package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/logger"
	"github.com/parleyhq/parley/internal/server"
)

var (
	serveAddr string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion backend",
	Long: `Serve runs the HTTP backend the client talks to. Chats and messages are
stored in a local SQLite database. Replies come from OpenAI when
OPENAI_API_KEY is set, or from a local echo responder otherwise.

Environment (a .env file in the working directory is honored):
  PARLEY_ADDR      listen address (default :8617)
  PARLEY_DB        SQLite database path (default ~/.parley/parley.db)
  OPENAI_API_KEY   OpenAI key; omit for offline echo replies
  PARLEY_MODEL     OpenAI model (default gpt-4o-mini)`,
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides PARLEY_ADDR)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (overrides PARLEY_DB)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Debug("Serve: no .env file loaded: %v", err)
	}
	defer logger.Close()

	addr := serveAddr
	if addr == "" {
		addr = os.Getenv("PARLEY_ADDR")
	}
	if addr == "" {
		addr = ":8617"
	}

	dbPath := serveDB
	if dbPath == "" {
		dbPath = os.Getenv("PARLEY_DB")
	}
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dir := filepath.Join(home, ".parley")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "parley.db")
	}

	store, err := server.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	var responder server.Responder
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model := os.Getenv("PARLEY_MODEL")
		responder = server.NewOpenAIResponder(key, model)
		fmt.Fprintf(os.Stderr, "parley serve: listening on %s (db %s, OpenAI responder)\n", addr, dbPath)
	} else {
		responder = server.EchoResponder{}
		fmt.Fprintf(os.Stderr, "parley serve: listening on %s (db %s, echo responder; set OPENAI_API_KEY for real replies)\n", addr, dbPath)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: server.New(store, responder).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
