package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-scraper/internal/observability"
)

// GracefulShutdown отменяет context по SIGINT/SIGTERM.
// Если после сигнала процесс не завершился за graceTime, выходим принудительно.
func GracefulShutdown(parent context.Context, logger *observability.Logger, graceTime time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Канал для сигналов ОС
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), "grace_time", graceTime)
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			return
		}

		select {
		case sig := <-sigChan:
			logger.Error("Second signal received, exiting", "signal", sig.String())
		case <-time.After(graceTime):
			logger.Error("Shutdown grace time exceeded, exiting")
		}
		_ = logger.Close()
		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
