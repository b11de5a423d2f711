// main is the entry point of the student result portal.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Build the auth gate from the configured admin identity
//  5. Register all HTTP routes (admin routes behind the bearer guard)
//  6. Start the HTTP server in a separate goroutine
//  7. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-portal --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-portal
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentportal/internal/auth"
	"studentportal/internal/config"
	"studentportal/internal/http/handlers/login"
	"studentportal/internal/http/handlers/search"
	"studentportal/internal/http/handlers/student"
	"studentportal/internal/http/middleware"
	"studentportal/internal/metrics"
	"studentportal/internal/storage/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad reads the YAML config and exits if anything is wrong —
	// including a missing JWT secret or admin credential pair.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-portal",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the code sees only the storage.Storage interface; the
	// SQLite implementation also declares the UNIQUE(roll) index that
	// backstops the handler-level conflict checks.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// ── 4. Auth Gate ──────────────────────────────────────────────────────
	// One fixed admin identity, resolved from config at startup. The
	// signing secret is process-wide state, read-only after this point.
	gate := auth.New(cfg.Auth)

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	// Route table:
	//   POST   /api/login           → admin login, returns a bearer token
	//   POST   /api/students        → create a record           (admin)
	//   GET    /api/students        → list records, newest first (admin)
	//   GET    /api/students/{id}   → get one record             (admin)
	//   PUT    /api/students/{id}   → merge-update a record      (admin)
	//   DELETE /api/students/{id}   → delete a record            (admin)
	//   POST   /api/search          → public lookup by roll + dob
	//   GET    /metrics             → Prometheus metrics
	m := metrics.New(prometheus.DefaultRegisterer)
	router := http.NewServeMux()

	route := func(pattern, path string, h http.HandlerFunc) {
		router.HandleFunc(pattern, m.Instrument(path, h))
	}
	admin := func(pattern, path string, h http.HandlerFunc) {
		route(pattern, path, middleware.RequireAuth(gate, h))
	}

	route("POST /api/login", "/api/login", login.New(gate))
	route("POST /api/search", "/api/search", search.New(storage))

	admin("POST /api/students", "/api/students", student.New(storage))
	admin("GET /api/students", "/api/students", student.GetList(storage))
	admin("GET /api/students/{id}", "/api/students/{id}", student.GetByID(storage))
	admin("PUT /api/students/{id}", "/api/students/{id}", student.Update(storage))
	admin("DELETE /api/students/{id}", "/api/students/{id}", student.Delete(storage))

	router.Handle("GET /metrics", promhttp.Handler())

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Production hardening — timeouts prevent slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks forever, so it runs in its own goroutine and
	// main stays free to wait for the shutdown signal.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 8. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	// Give in-flight requests five seconds to finish before exiting.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
