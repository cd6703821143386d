package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaoclinica/backend/internal/api"
	"github.com/gestaoclinica/backend/internal/cache"
	"github.com/gestaoclinica/backend/internal/closing"
	"github.com/gestaoclinica/backend/internal/config"
	"github.com/gestaoclinica/backend/internal/middleware"
	"github.com/gestaoclinica/backend/internal/migrate"
	"github.com/gestaoclinica/backend/internal/repo"
	"github.com/gestaoclinica/backend/internal/seed"
)

func main() {
	cfg := config.Load()
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("config postgres: %v", err)
		}
		if cfg.DBMaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.DBMaxConns)
		}
		if cfg.DBMinConns > 0 {
			poolConfig.MinConns = int32(cfg.DBMinConns)
		}
		if cfg.DBMaxConnLifetime > 0 {
			poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
		}
		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatalf("ping postgres: %v", err)
		}
		if err := migrate.Run(context.Background(), pool, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		if err := seed.Run(context.Background(), pool); err != nil {
			log.Printf("seed (ignored if already applied): %v", err)
		}
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no database"}`))
			return
		}
		if err := pool.Ping(context.Background()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	mode := closing.ParsePartnershipMode(cfg.PartnershipMode)
	calc := closing.New(&repo.ClosingSource{Pool: pool}, mode)
	log.Printf("[fechamento] modo de parceria: %s", mode)

	h := &api.Handler{
		Pool:  pool,
		Cfg:   cfg,
		Cache: cache.New(30 * time.Second),
		Calc:  calc,
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	// Ingestão de erros do frontend. Auth é opcional: se houver JWT, enriquece o contexto.
	apiRouter.Handle("/errors/frontend", middleware.OptionalAuthMiddleware(cfg.JWTSecret)(http.HandlerFunc(h.IngestFrontendError))).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)

	protected.HandleFunc("/patients", h.ListPatients).Methods(http.MethodGet)
	protected.HandleFunc("/patients", h.CreatePatient).Methods(http.MethodPost)
	protected.HandleFunc("/patients/{patientId}", h.GetPatient).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{patientId}", h.UpdatePatient).Methods(http.MethodPatch)
	protected.Handle("/patients/{patientId}", middleware.RequireAdmin(http.HandlerFunc(h.DeletePatient))).Methods(http.MethodDelete)
	protected.HandleFunc("/patients/{patientId}/interactions", h.ListInteractions).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{patientId}/interactions", h.CreateInteraction).Methods(http.MethodPost)

	protected.HandleFunc("/rooms", h.ListRooms).Methods(http.MethodGet)
	protected.Handle("/rooms", middleware.RequireAdmin(http.HandlerFunc(h.CreateRoom))).Methods(http.MethodPost)
	protected.Handle("/rooms/{roomId}", middleware.RequireAdmin(http.HandlerFunc(h.DeactivateRoom))).Methods(http.MethodDelete)

	protected.HandleFunc("/bookings", h.Agenda).Methods(http.MethodGet)
	protected.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", h.DeleteBooking).Methods(http.MethodDelete)

	protected.HandleFunc("/doctors", h.ListDoctors).Methods(http.MethodGet)
	protected.Handle("/doctors", middleware.RequireAdmin(http.HandlerFunc(h.CreateDoctor))).Methods(http.MethodPost)
	protected.Handle("/doctors/{doctorId}", middleware.RequireAdmin(http.HandlerFunc(h.DeleteDoctor))).Methods(http.MethodDelete)
	protected.Handle("/doctors/{doctorId}/contract", middleware.RequireAdmin(http.HandlerFunc(h.UpsertContract))).Methods(http.MethodPut)
	protected.HandleFunc("/doctors/{doctorId}/consumption", h.DoctorConsumption).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/revenue", h.ListRevenue).Methods(http.MethodGet)

	protected.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	protected.Handle("/products", middleware.RequireAdmin(http.HandlerFunc(h.CreateProduct))).Methods(http.MethodPost)
	protected.Handle("/products/{productId}", middleware.RequireAdmin(http.HandlerFunc(h.UpdateProduct))).Methods(http.MethodPatch)
	protected.Handle("/products/{productId}", middleware.RequireAdmin(http.HandlerFunc(h.DeactivateProduct))).Methods(http.MethodDelete)
	protected.HandleFunc("/consumption", h.RegisterConsumption).Methods(http.MethodPost)

	protected.Handle("/expenses", middleware.RequireAdmin(http.HandlerFunc(h.ListExpenses))).Methods(http.MethodGet)
	protected.Handle("/expenses", middleware.RequireAdmin(http.HandlerFunc(h.CreateExpense))).Methods(http.MethodPost)
	protected.Handle("/expenses/{expenseId}", middleware.RequireAdmin(http.HandlerFunc(h.DeleteExpense))).Methods(http.MethodDelete)
	protected.Handle("/revenue", middleware.RequireAdmin(http.HandlerFunc(h.CreateRevenue))).Methods(http.MethodPost)

	protected.Handle("/financeiro/fechamento", middleware.RequireAdmin(http.HandlerFunc(h.MonthlyClosing))).Methods(http.MethodGet)
	protected.Handle("/financeiro/fechamento/pdf", middleware.RequireAdmin(http.HandlerFunc(h.MonthlyClosingPDF))).Methods(http.MethodGet)

	chain := middleware.Recover(middleware.RequestID(middleware.Timeout(cfg.RequestTimeoutSec)(middleware.CORS(cfg.CORSOrigins)(middleware.Gzip(r)))))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("backend listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("backend stopped")
}
