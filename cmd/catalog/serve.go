package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/catalog-service/internal/transport/grpcserver"
	"github.com/fekuna/catalog-service/internal/transport/httpserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over gRPC and HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, cfg.Database.AutoMigrate)
		if err != nil {
			return err
		}
		defer a.Close()

		exec := a.executor(cfg.Catalog)

		lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
		if err != nil {
			return err
		}
		grpcServer := grpcserver.NewServer(grpcserver.NewCatalogHandler(exec, a.log), a.log)
		httpServer := httpserver.New(exec, a.db, a.log)

		errCh := make(chan error, 2)
		go func() {
			a.log.Info("starting gRPC server", zap.String("addr", lis.Addr().String()))
			errCh <- grpcServer.Serve(lis)
		}()
		go func() {
			addr := listenAddr(cfg.Server.HTTPPort)
			a.log.Info("starting HTTP server", zap.String("addr", addr))
			if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			a.log.Error("server stopped unexpectedly", zap.Error(err))
		}

		a.log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("HTTP shutdown", zap.Error(err))
		}
		grpcServer.GracefulStop()
		a.log.Info("servers stopped")
		return nil
	},
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
