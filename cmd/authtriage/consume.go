package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	inputredis "authtriage/internal/input/redis"
	"authtriage/internal/logger"
	"authtriage/internal/metrics"
	"authtriage/internal/pipeline"
	"authtriage/internal/server"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Analyze payloads popped from a Redis list",
	Args:  cobra.NoArgs,
	RunE:  runConsume,
}

func runConsume(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Close()
	c := &cfg.AuthTriage
	logger.Infof("authtriage consume starting (config=%q)", path)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := inputredis.NewConsumer(inputredis.Config{
		Addr:         c.Input.Redis.Addr,
		Password:     c.Input.Redis.Password,
		DB:           c.Input.Redis.DB,
		Key:          c.Input.Redis.Key,
		BlockTimeout: c.Input.Redis.BlockTimeout,
	})
	if err != nil {
		return err
	}
	if err := consumer.Ping(ctx); err != nil {
		consumer.Close()
		return err
	}
	logger.Infof("Consuming Redis list %s on %s", consumer.Key(), c.Input.Redis.Addr)

	m := metrics.New()
	assessor, err := newAssessor(c, m, false)
	if err != nil {
		consumer.Close()
		return err
	}
	reportWriter, err := newReportWriter(c.Output)
	if err != nil {
		consumer.Close()
		return err
	}
	policy, alertWriter, err := newAlerting(c.Alerts)
	if err != nil {
		reportWriter.Close()
		consumer.Close()
		return err
	}

	pipe := pipeline.NewQueuePipeline(consumer, assessor, reportWriter, policy, alertWriter, m, pipeline.QueueConfig{
		Workers:       c.Pipeline.Workers,
		BatchSize:     c.Pipeline.BatchSize,
		FlushInterval: c.Pipeline.FlushInterval,
	})
	defer pipe.Close()

	metricsDone := make(chan error, 1)
	if addr := c.Consume.MetricsAddr; addr != "" && !strings.EqualFold(addr, "off") {
		gin.SetMode(gin.ReleaseMode)
		metricsSrv := server.NewMetricsHTTP(addr, m)
		go func() { metricsDone <- metricsSrv.Run(ctx, shutdownTimeout) }()
	} else {
		metricsDone <- nil
	}

	runErr := pipe.Run(ctx)
	stop()
	if err := <-metricsDone; err != nil {
		logger.Errorf("Metrics server: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logger.Infof("Shutting down...")
	return nil
}
