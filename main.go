package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voyago/auth"
	"voyago/avis"
	"voyago/cascade"
	"voyago/chambres"
	"voyago/config"
	"voyago/db"
	"voyago/filemgr"
	"voyago/hotels"
	"voyago/metrics"
	"voyago/middleware"
	"voyago/mq"
	"voyago/offres"
	"voyago/payes"
	"voyago/ratelim"
	"voyago/rdx"
	"voyago/receipts"
	"voyago/reservations"
	"voyago/routes"
	"voyago/users"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request method, path, remote address, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.RequestURI).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(cfg config.Config, store *db.Store, cache *rdx.Cache) *httprouter.Router {
	co := cascade.New(store)
	events := mq.NewEmitter(cache)
	authMW := middleware.NewAuth(cfg.JWTSecret)
	rateLimiter := ratelim.NewRateLimiter(5, 10)

	authHandler := auth.NewHandler(store, authMW, cache)
	userHandler := users.NewHandler(store, co, events)
	payeHandler := payes.NewHandler(store, co, events)
	hotelHandler := hotels.NewHandler(store, co, events)
	chambreHandler := chambres.NewHandler(store, co, events)
	offreHandler := offres.NewHandler(store, co, events)
	resHandler := reservations.NewHandler(store, co, events)
	avisHandler := avis.NewHandler(store, co, events)
	receiptHandler := receipts.NewHandler(store, receipts.NewGenerator(cfg.JWTSecret))
	uploadHandler := filemgr.NewHandler(filemgr.NewSaver(cfg.UploadDir), hotelHandler)

	router := httprouter.New()
	router.GET("/health", Index)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler(metrics.Registry()))

	routes.AddAuthRoutes(router, authHandler, rateLimiter, authMW)
	routes.AddUserRoutes(router, userHandler, authMW)
	routes.AddPayeRoutes(router, payeHandler, authMW)
	routes.AddHotelRoutes(router, hotelHandler, uploadHandler, authMW)
	routes.AddChambreRoutes(router, chambreHandler, authMW)
	routes.AddOffreRoutes(router, offreHandler, authMW)
	routes.AddReservationRoutes(router, resHandler, receiptHandler, authMW)
	routes.AddAvisRoutes(router, avisHandler, authMW)
	routes.AddStaticRoutes(router, cfg.UploadDir)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	cache := rdx.New(cfg.RedisAddr)

	router := setupRouter(cfg, store, cache)

	// apply middleware: CORS -> security headers -> metrics -> logging -> router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := requestLogger(metrics.Instrument(securityHeaders(corsHandler)))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		if err := cache.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
		if err := store.Close(context.Background()); err != nil {
			log.Printf("mongo close: %v", err)
		}
	})

	go func() {
		log.Info().Str("addr", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("Shutdown signal received; shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped cleanly")
}
