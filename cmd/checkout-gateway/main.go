package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/api"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/checkout"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/discounts"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/events"
	h "github.com/duongtrinhxuan/foodorder-checkout/internal/http"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/journal"
)

type Config struct {
	HTTPPort        string
	OrderAPIBaseURL string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	MigrationsPath  string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// .env is optional, env vars win
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		OrderAPIBaseURL: getEnv("ORDER_API_BASE_URL", "http://localhost:3000"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		PostgresHost:    getEnv("POSTGRES_HOST", ""),
		PostgresUser:    getEnv("POSTGRES_USER", "checkout"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "checkout"),
		PostgresDB:      getEnv("POSTGRES_DB", "checkoutdb"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/journal/migrations"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	port, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid POSTGRES_PORT: %v", err)
	}
	cfg.PostgresPort = port

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	apiClient := api.NewClient(cfg.OrderAPIBaseURL, cfg.RequestTimeout)
	log.Printf("Using order API at %s", cfg.OrderAPIBaseURL)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	catalog := discounts.NewCatalog(apiClient, discounts.NewRedisCache(redisClient))

	// the submission journal is optional: without postgres the checkout
	// flow still works, it just leaves no step trail
	var jnl journal.Journal
	if cfg.PostgresHost != "" {
		creds := &journal.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPass,
			DBName:            cfg.PostgresDB,
			MigrationsDirPath: cfg.MigrationsPath,
		}
		repo, err := journal.NewRepository(creds)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer repo.Close()
		if err := repo.RunMigrations(creds); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		jnl = repo
		log.Printf("Submission journal at %s:%d", cfg.PostgresHost, cfg.PostgresPort)
	}

	var publisher checkout.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		log.Printf("Publishing order events to %v", cfg.KafkaBrokers)
	}

	svc := checkout.NewService(apiClient, catalog, jnl, publisher)
	svc.OnCartChanged = func(ctx context.Context, cartID int64) {
		// refresh the cached cart count after a successful submission
		lines, err := apiClient.GetCartItems(ctx, cartID)
		if err != nil {
			log.Printf("cart count refresh error: %v", err)
			return
		}
		log.Printf("cart %d now holds %d active lines", cartID, len(lines))
	}

	handler := h.NewCheckoutHandler(svc, catalog, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.MockAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/quote", handler.Quote)
		r.Get("/discounts", handler.ListDiscounts)
		r.Get("/addresses", handler.ListAddresses)
		r.Post("/submit", handler.Submit)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Printf("checkout gateway listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
