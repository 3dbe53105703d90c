// backend/cmd/api/main.go
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpin "talentagency/internal/adapters/in/http"
	"talentagency/internal/adapters/in/http/middleware"
	"talentagency/internal/platform/di"
)

func main() {
	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// ─────────────────────────────────────────────────────────────
	// Log output: ファイル + stdout の両方に出す
	// ─────────────────────────────────────────────────────────────
	if f, err := os.OpenFile("agency-api.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644); err == nil {
		mw := io.MultiWriter(os.Stdout, f)
		log.SetOutput(mw)
		log.Printf("[boot] log output = stdout + agency-api.log")
	} else {
		log.Printf("[boot] WARN: could not open agency-api.log: %v", err)
	}

	// ─────────────────────────────────────────────────────────────
	// Lightweight healthz first so PORT is LISTENed quickly
	// ─────────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ─────────────────────────────────────────────────────────────
	// DI container & heavy deps; keep /healthz even on failure
	// ─────────────────────────────────────────────────────────────
	var cont *di.Container
	if c, err := di.NewContainer(ctx); err != nil {
		log.Printf("[boot] WARN: di init failed: %v (serving /healthz only)", err)
	} else {
		cont = c

		deps := cont.RouterDeps()
		if deps.Auth == nil {
			log.Printf("[boot] RouterDeps.Auth is NIL (protected routes answer 503)")
		}
		if deps.WebhookVerifier == nil {
			log.Printf("[boot] RouterDeps.WebhookVerifier is NIL (payment webhook disabled)")
		}

		// Attach app router under "/"
		mux.Handle("/", httpin.NewRouter(deps))

		// catalog listener + outbox sweeper
		cont.Start(ctx)
	}

	// ─────────────────────────────────────────────────────────────
	// Port resolution: config → env:PORT → 8080
	// ─────────────────────────────────────────────────────────────
	port := ""
	if cont != nil && cont.Config.Port != "" {
		port = cont.Config.Port
	}
	if port == "" {
		if p := os.Getenv("PORT"); p != "" {
			port = p
		} else {
			port = "8080"
		}
	}

	// ─────────────────────────────────────────────────────────────
	// Global CORS wrapper (covers /healthz and app routes)
	// ─────────────────────────────────────────────────────────────
	allowed := os.Getenv("CORS_ALLOWED_ORIGIN")
	if cont != nil {
		allowed = cont.Infra.Settings.CorsAllowedOrigin
	}
	handler := middleware.CORS(allowed)(mux)

	// WriteTimeout is left at zero: /shop/products/stream holds the connection open.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown for Cloud Run
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		// background worker を先に止める
		stopWorkers()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			// SSE ストリームが残っている場合はここで切断
			log.Printf("[boot] server shutdown error: %v; closing remaining connections", err)
			_ = srv.Close()
		}
		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	if cont != nil {
		cont.Close()
	}
	log.Printf("[boot] server stopped")
}
