package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading_dashboard/internal/config"
	"trading_dashboard/internal/logger"
	"trading_dashboard/internal/refresher"
	"trading_dashboard/internal/server"
	"trading_dashboard/internal/sheets"
	"trading_dashboard/internal/telegram"
)

const LogFile = "dashboard.log"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logger.Setup(LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := sheets.NewGoogleStore(cfg.CredsPath, cfg.SpreadsheetID)
	ref := refresher.New(cfg, store)

	// Telegram command listener runs in the background; it degrades to a
	// no-op when the bot credentials are absent.
	go telegram.StartListener(ref.HandleCommand)

	// Refresh loop.
	go ref.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(ref),
	}
	go func() {
		log.Printf("Dashboard listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ERROR: http server: %v", err)
			cancel()
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		log.Println("⚠️ Shutting down: system signal received.")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: http shutdown: %v", err)
	}
	log.Println("🛑 Dashboard stopped.")
}
