package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/webcast/internal/config"
	"github.com/dgnsrekt/webcast/internal/screencast"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.LoadScreencaster()
	if err != nil {
		slog.Error("failed to load screencaster config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("screencaster config loaded",
		"cdp_url", cfg.CDPURL(),
		"page_url", cfg.PageURL,
		"ingest_url", cfg.IngestURL,
		"max_fps", cfg.MaxFPS,
		"jpeg_quality", cfg.JPEGQuality,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), cfg.CDPURL())
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if cfg.PageURL != "" {
		if err := chromedp.Run(ctx, chromedp.Navigate(cfg.PageURL)); err != nil {
			slog.Error("failed to open capture page", "page_url", cfg.PageURL, "error", err)
			os.Exit(1)
		}
	} else if err := chromedp.Run(ctx); err != nil {
		slog.Error("failed to attach to browser", "cdp_url", cfg.CDPURL(), "error", err)
		os.Exit(1)
	}

	pub := screencast.New(screencast.Options{
		IngestURL: cfg.IngestURL,
		Quality:   cfg.JPEGQuality,
		MinGap:    time.Second / time.Duration(cfg.MaxFPS),
	})
	if err := pub.Start(ctx); err != nil {
		slog.Error("failed to start screencast", "error", err)
		os.Exit(1)
	}
	slog.Info("screencaster publishing", "ingest_url", cfg.IngestURL)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	pub.Stop(ctx)
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
