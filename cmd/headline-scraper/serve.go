package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/headline_scraper/internal/api"
	"github.com/nitesh/headline_scraper/internal/scheduler"
)

const (
	shutdownTimeout  = 10 * time.Second
	scheduledTimeout = 5 * time.Minute
)

// Run executes the serve command. It returns after ctx is cancelled and the
// server has drained.
func (c *ServeCmd) Run(deps *Dependencies) error {
	a, err := newApp(deps.Ctx, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if c.Port != "" {
		port = c.Port
	}

	if deps.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(deps.Stderr), gin.Recovery())
	api.RegisterRoutes(router, api.NewHandler(a.svc))

	if a.cfg.ScrapeCron != "" {
		sched, err := scheduler.New(a.cfg.ScrapeCron, scheduledTimeout, func(ctx context.Context) error {
			_, err := a.svc.Scrape(ctx)
			return err
		}, a.logger)
		if err != nil {
			return fmt.Errorf("SCRAPE_CRON: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	a.logger.Info("listening", "addr", ln.Addr().String(), "scrape_url", a.cfg.ScrapeURL)
	if deps.Listening != nil {
		deps.Listening(ln.Addr())
	}

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-deps.Ctx.Done():
	}

	a.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
