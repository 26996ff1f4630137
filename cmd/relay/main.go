package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/webcast/internal/api"
	"github.com/dgnsrekt/webcast/internal/broadcast"
	"github.com/dgnsrekt/webcast/internal/config"
	"github.com/dgnsrekt/webcast/internal/netutil"
	"github.com/dgnsrekt/webcast/internal/notify"
	"github.com/dgnsrekt/webcast/internal/recorder"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load relay config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("relay config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"queue_capacity", cfg.QueueCapacity,
		"record_dir", cfg.RecordDir,
		"notify_endpoint", cfg.NotifyEndpoint,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	notifier := notify.New(cfg.NotifyEndpoint, nil)

	var rec *recorder.Recorder
	if cfg.RecordDir != "" {
		rec, err = recorder.New(cfg.RecordDir, 0)
		if err != nil {
			slog.Error("failed to open recorder", "dir", cfg.RecordDir, "error", err)
			os.Exit(1)
		}
	}

	opts := broadcast.EngineOptions{
		QueueCapacity: cfg.QueueCapacity,
		OnTransition: func(tr broadcast.Transition) {
			// Notifications run off the ingest path.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				var err error
				if tr.Live {
					err = notifier.StreamLive(ctx, tr.Codec)
				} else {
					err = notifier.StreamEnded(ctx, tr.Codec)
				}
				if err != nil {
					slog.Warn("transition notification failed", "live", tr.Live, "error", err)
				}
			}()
		},
	}
	if rec != nil {
		opts.Tap = rec.OnUnit
	}

	engine := broadcast.NewEngine(opts)
	h := api.NewServer(engine)

	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("relay listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("relay server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("relay shutdown failed", "error", err)
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			slog.Error("recorder close failed", "error", err)
		}
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
