package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jpegscaler/internal/config"
	"jpegscaler/internal/handler"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	h, err := handler.New(cfg)
	if err != nil {
		log.Fatalf("handler setup: %v", err)
	}
	defer h.Close()

	srv := &http.Server{
		Handler:           newRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ln, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.ServerAddr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting jpegscaler on %s (quality=%.2f max_upload=%d bytes)", ln.Addr(), cfg.Quality, cfg.MaxUploadBytes)
	if err := serve(ctx, srv, ln, shutdownTimeout); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}

func newRouter(h *handler.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	h.RegisterRoutes(r)
	return r
}

// serve runs srv on ln until ctx is done, then shuts it down, giving
// in-flight requests up to timeout to finish.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		// Serve returned before any shutdown was requested
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
