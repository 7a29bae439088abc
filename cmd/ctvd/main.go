package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/covenant7000/internal/clock"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/repository/clickhouse"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/service"
	"github.com/goodnatureofminers/covenant7000/internal/metrics"
	"github.com/goodnatureofminers/covenant7000/internal/transport"
	"github.com/goodnatureofminers/covenant7000/pkg/batcher"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var config struct {
	Addr          string        `long:"addr" env:"CTVD_ADDR" description:"http listen addr" default:":8001"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CTVD_CLICKHOUSE_DSN" description:"clickhouse dsn; archiving is disabled when empty"`
	PingAttempts  int           `long:"ping-attempts" env:"CTVD_PING_ATTEMPTS" description:"clickhouse ping attempts before giving up" default:"10"`
	FlushSize     int           `long:"flush-size" env:"CTVD_FLUSH_SIZE" description:"archive batch size" default:"500"`
	FlushInterval time.Duration `long:"flush-interval" env:"CTVD_FLUSH_INTERVAL" description:"archive flush interval" default:"2s"`
	FlushRPS      int           `long:"flush-rps" env:"CTVD_FLUSH_RPS" description:"max archive flushes per second; 0 is unlimited" default:"10"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	var archive service.ArchiveRepository
	if config.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(config.ClickhouseDSN, metrics.NewArchiveRepository("clickhouse"))
		if err != nil {
			logger.Fatal("Open clickhouse repository", zap.Error(err))
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close clickhouse repository", zap.Error(err))
			}
		}()
		err = clock.Retry(ctx, config.PingAttempts, time.Second, 30*time.Second, func(ctx context.Context) error {
			err := repo.Ping(ctx)
			if err != nil {
				logger.Warn("Clickhouse not ready", zap.Error(err))
			}
			return err
		})
		if err != nil {
			logger.Fatal("Clickhouse unavailable", zap.Error(err))
		}

		writer := service.NewArchiveWriter(logger, repo, batcher.Config{
			FlushSize:     config.FlushSize,
			FlushInterval: config.FlushInterval,
			RPS:           config.FlushRPS,
		})
		writer.Start(ctx)
		defer writer.Stop()
		archive = writer
	} else {
		logger.Info("Archiving disabled, no clickhouse dsn configured")
	}

	svc := service.NewCovenantService(logger, metrics.NewCovenantBuilder(), archive)

	mux := http.NewServeMux()
	transport.NewHTTPHandler(logger, svc, metrics.NewHTTPHandler()).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
