package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/club/internal/api"
	"example.com/club/internal/assistant"
	"example.com/club/internal/auth"
	"example.com/club/internal/config"
	"example.com/club/internal/domain"
	"example.com/club/internal/outbox"
	persistence "example.com/club/internal/persistence/postgres"
	httptransport "example.com/club/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	configureLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		BatchTimeout: cfg.KafkaBatchTimeout,
		RequiredAcks: cfg.KafkaRequiredAcks,
	})
	defer producer.Close()

	schemaRegistry := outbox.NewSchemaRegistryClient(outbox.SchemaRegistryConfig{BaseURL: cfg.SchemaRegistryURL})
	dispatcher := outbox.NewDispatcher(pool, producer, schemaRegistry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	registry := domain.NewRegistry(repo)
	ledger := domain.NewLedger(repo, repo)
	aggregator := domain.NewAggregator(repo, repo)
	standings := domain.NewStandings(repo)
	assist := assistant.NewService(assistant.NewGeminiInvoker(assistant.GeminiConfig{
		APIKey: cfg.AssistantAPIKey,
		Model:  cfg.AssistantModel,
	}))

	handler := api.NewHandler(registry, ledger, aggregator, standings, assist)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logrus.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("request")
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		publicRoutes,
	)

	server := httptransport.NewServer(
		httptransport.ServerConfig{Address: cfg.HTTPAddress},
		authMiddleware.Wrap(logger(cors(mux))),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.WithField("address", cfg.HTTPAddress).Info("club-service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed")
	}

	dispatcher.Wait()
}

// publicRoutes lists the endpoints browsable without a bearer token: the
// activity catalog, the gem ranking, health, and metrics.
func publicRoutes(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return true
	}
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Path == "/v1/users/ranking" || r.URL.Path == "/v1/activities" {
		return true
	}
	// GET /v1/activities/{id} stays public, child resources do not.
	if rest, ok := strings.CutPrefix(r.URL.Path, "/v1/activities/"); ok {
		return rest != "" && !strings.Contains(rest, "/")
	}
	return false
}

func configureLogging(cfg config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
