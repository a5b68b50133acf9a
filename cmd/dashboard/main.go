package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smc-dashboard/internal/logger"
	"smc-dashboard/internal/session"
	"smc-dashboard/internal/trace"
	"smc-dashboard/internal/web"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	client := initializeClient(cfg)
	fetcher := initializeFetcher(ctx, cfg, client)
	submitter := initializeSubmitter(cfg, client)

	srv := web.NewServer(cfg.Web.Title, submitter)
	sess := session.New(fetcher, srv.Surfaces(), time.Duration(cfg.PollSeconds)*time.Second)
	srv.SetRowSource(sess)

	go func() {
		logger.Info(ctx, "Operator surface listening", "addr", cfg.Web.Listen)
		if err := srv.ListenAndServe(cfg.Web.Listen); err != nil && err != http.ErrServerClosed {
			logger.ErrorWithErr(ctx, "HTTP server stopped", err)
			cancel()
		}
	}()

	go sess.Run(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigc:
		logger.Info(ctx, "Shutting down...")
	case <-ctx.Done():
	}

	sess.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = trace.Shutdown(shutdownCtx)
	_ = logger.Shutdown(shutdownCtx)
}
