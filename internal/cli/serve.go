package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"edluar/pipeline/internal/api"
	"edluar/pipeline/internal/db"
	"edluar/pipeline/internal/events"
	"edluar/pipeline/internal/pipeline"
	"edluar/pipeline/internal/rpc"
	"edluar/pipeline/internal/scheduler"
	"edluar/pipeline/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST and gRPC servers and the headcount sweep",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("http-addr", "", "REST listen address")
	f.String("grpc-addr", "", "gRPC listen address")
	f.Bool("migrate", true, "apply the schema before serving")
	_ = v.BindPFlag("http_addr", f.Lookup("http-addr"))
	_ = v.BindPFlag("grpc_addr", f.Lookup("grpc-addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// ── Database ─────────────────────────────────────────────────────────────
	logger.Info("opening database")
	backend, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer backend.Close()
	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := backend.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("database ready")

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb)
		logger.Info("redis connected")
	} else {
		logger.Warn("redis_url not set, pipeline events are not published")
	}

	svc := pipeline.NewService(backend, pub, logger)

	// ── Sweep ────────────────────────────────────────────────────────────────
	if cfg.SweepSchedule != "" {
		sched := scheduler.New(svc, cfg.SweepSchedule, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	// ── Servers ──────────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewHandler(svc, logger, Version).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	grpcServer := rpc.NewGRPCServer(svc, logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("stopped")
	return err
}
