package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"authtriage/internal/logger"
	"authtriage/internal/metrics"
	"authtriage/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Close()
	logger.Infof("authtriage serve starting (config=%q)", path)

	m := metrics.New()
	assessor, err := newAssessor(&cfg.AuthTriage, m, false)
	if err != nil {
		return err
	}

	var opts []server.Option
	policy, alertWriter, err := newAlerting(cfg.AuthTriage.Alerts)
	if err != nil {
		return err
	}
	if alertWriter != nil {
		defer alertWriter.Close()
		opts = append(opts, server.WithAlerts(policy, alertWriter))
	}

	gin.SetMode(gin.ReleaseMode)
	sc := cfg.AuthTriage.Server
	srv := server.NewHTTP(server.Config{
		Addr:         sc.Addr,
		MaxBodyBytes: sc.MaxBodyBytes,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}, assessor, m, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, shutdownTimeout); err != nil {
		return err
	}
	logger.Infof("Shutting down...")
	return nil
}
