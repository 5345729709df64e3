// Package cli wires the edluar command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"edluar/pipeline/internal/board"
	"edluar/pipeline/internal/client"
	"edluar/pipeline/internal/config"
	"edluar/pipeline/internal/rpc"
)

// Version is stamped at build time.
var Version = "0.1.0"

var (
	configFile string
	v          = config.New()
	cfg        *config.Config
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edluar",
	Short: "Application-stage pipeline for the Edluar applicant tracker",
	Long: `edluar runs the application pipeline server (REST + gRPC) and the
terminal board that recruiters use to move candidates between stages.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		cfg = loaded
		logger = cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./edluar.yaml if present)")
	pf.String("database-url", "", "sqlite:<path> or postgres:// URL")
	pf.String("server", "", "pipeline server base URL for client commands")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.String("transport", "rest", "client transport: rest or grpc")

	bind := map[string]string{
		"database_url": "database-url",
		"server_url":   "server",
		"log_level":    "log-level",
		"log_format":   "log-format",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		seedCmd,
		listCmd,
		moveCmd,
		advanceCmd,
		historyCmd,
		jobsCmd,
		boardCmd,
	)
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// storeClient is what the client commands need from a transport.
type storeClient interface {
	board.Store
	Close() error
}

type restStore struct{ *client.Client }

func (restStore) Close() error { return nil }

// newStoreClient picks the REST or gRPC client per --transport.
func newStoreClient(cmd *cobra.Command) (storeClient, error) {
	transport, _ := cmd.Flags().GetString("transport")
	switch transport {
	case "", "rest":
		return restStore{client.New(cfg.ServerURL, nil)}, nil
	case "grpc":
		c, err := rpc.Dial(grpcTarget(cfg.GRPCAddr))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown transport %q (want rest or grpc)", transport)
}

// grpcTarget turns a listen address like ":9090" into a dialable target.
func grpcTarget(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
