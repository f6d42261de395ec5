package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	api "github.com/mind-engage/edueval/internal/api/http"
	"github.com/mind-engage/edueval/internal/config"
	"github.com/mind-engage/edueval/internal/extract"
	"github.com/mind-engage/edueval/internal/metrics"
	"github.com/mind-engage/edueval/internal/session"
	"github.com/mind-engage/edueval/internal/synth"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return serve
}

func runServer(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbh, catalog, err := openCatalog(openCtx, cfg)
	if err != nil {
		return err
	}
	defer dbh.Close()

	blobs, err := openBlobs(openCtx, cfg)
	if err != nil {
		return err
	}
	registry, err := openRegistry(openCtx, cfg)
	if err != nil {
		return err
	}
	events, closeEvents, err := openEvents(dbh, cfg)
	if err != nil {
		return err
	}
	defer closeEvents()

	// --- Services ---
	m := metrics.New()
	svc := session.NewService(catalog, registry, session.NewTokens(cfg.ResumeSecret, cfg.SessionTTL))
	svc.Events = events
	svc.Metrics = m

	gen := synth.NewRandom()
	if cfg.GeneratorSeed != 0 {
		gen = synth.New(cfg.GeneratorSeed)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: cfg.Mode == config.ModeOnline,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if p, ok := registry.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				http.Error(w, "sessions: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	r.Handle("/metrics", m.Handler())

	api.Mount(r, api.Deps{
		Catalog:        catalog,
		Sessions:       svc,
		Blobs:          blobs,
		Extractor:      extract.Default(),
		Generator:      gen,
		Events:         events,
		Metrics:        m,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (mode=%s, db=%s, blobs=%s, sessions=%s)",
			cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.BlobDriver, cfg.SessionDriver)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Printf("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return s.Shutdown(shutdownCtx)
}
