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

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shopkit/storefront/internal/catalog"
	"github.com/shopkit/storefront/internal/events"
	"github.com/shopkit/storefront/internal/httpapi"
	"github.com/shopkit/storefront/internal/order"
	"github.com/shopkit/storefront/internal/postgres"
	"github.com/shopkit/storefront/internal/review"
)

type Config struct {
	HTTPPort        string
	Postgres        postgres.Credentials
	RedisAddr       string
	MongoURI        string
	MongoDatabase   string
	KafkaBrokers    []string
	AuthTokens      string
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Postgres: postgres.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "storefront"),
		KafkaBrokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
		AuthTokens:      getEnv("AUTH_TOKENS", "dev-user-token=user-1:USER,dev-admin-token=admin-1:ADMIN"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return value
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAuthTokens reads "token=userID:role" pairs from a comma-separated list.
func parseAuthTokens(raw string) (map[string]httpapi.Identity, error) {
	tokens := make(map[string]httpapi.Identity)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, claim, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.New("auth token entry missing '='")
		}
		userID, role, ok := strings.Cut(claim, ":")
		if !ok || userID == "" || role == "" {
			return nil, errors.New("auth token claim must be userID:role")
		}
		tokens[token] = httpapi.Identity{UserID: userID, Role: role}
	}
	return tokens, nil
}

func main() {
	cfg := loadConfig()

	db, err := postgres.Connect(&cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, &cfg.Postgres); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := review.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancelMongo()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoDB.Client().Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongodb: %v", err)
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("publishing order events to kafka at %v", cfg.KafkaBrokers)
	} else {
		log.Println("KAFKA_BROKERS not set, order events disabled")
	}

	tokens, err := parseAuthTokens(cfg.AuthTokens)
	if err != nil {
		log.Fatalf("invalid AUTH_TOKENS: %v", err)
	}

	catalogRepo := catalog.NewPostgresRepository(db)
	productReader := catalog.NewCachedReader(catalogRepo, redisClient)
	orderService := order.NewService(order.NewPostgresRepository(db), catalogRepo, publisher)
	reviewRepo := review.NewMongoRepository(mongoDB)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Orders:     httpapi.NewOrderHandler(orderService),
		Products:   httpapi.NewProductHandler(catalogRepo, productReader, reviewRepo),
		Categories: httpapi.NewCategoryHandler(catalogRepo),
		Verifier:   httpapi.StaticTokenVerifier{Tokens: tokens},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
