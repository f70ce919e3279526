/**
 * @description
 * This is the main entry point for the bank service. It is responsible for
 * initializing all components: configuration, the data store (PostgreSQL with
 * embedded migrations, or the in-memory store for demo mode), the optional
 * RabbitMQ event producer and Redis rate limiter, the token issuer, the core
 * application service, and the HTTP server. It wires everything together and
 * starts the service with graceful shutdown.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pool.
 * - github.com/redis/go-redis/v9: Redis client for distributed rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/token, pkg/rabbitmq: Identity tokens and event publishing.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/api"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/app"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/config"
	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/store"
	"github.com/BIGSAMOFAFRICA/BANKAPP/pkg/rabbitmq"
	"github.com/BIGSAMOFAFRICA/BANKAPP/pkg/token"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	openingBalance, err := decimal.NewFromString(strings.TrimSpace(cfg.OpeningBalance))
	if err != nil || openingBalance.IsNegative() {
		log.Fatalf("level=fatal component=bootstrap msg=\"invalid opening balance\" value=%q err=%v", cfg.OpeningBalance, err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting bank service\" port=%s bank_code=%s", cfg.ServerPort, cfg.BankCode)

	// Initialize the data access layer. Without a DATABASE_URL the service
	// runs on the in-memory store, which keeps demo deployments to a single
	// process with no external dependencies.
	var repository store.Repository
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"no database url; using in-memory store\" env=DATABASE_URL")
		repository = store.NewMemoryRepository()
	} else {
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"migrations failed\" err=%v", err)
		}

		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
		}
		poolConfig.MaxConns = 50
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		// Disable prepared statement caching to prevent conflicts behind
		// connection poolers.
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
		}
		defer dbpool.Close()
		log.Println("level=info component=bootstrap msg=\"database connected\"")

		repository = store.NewPostgresRepository(dbpool)
	}

	// Initialize the RabbitMQ producer to publish money-movement events.
	// This service only publishes; consumers live elsewhere.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		producer = &rabbitmq.EventProducerFallback{}
		log.Println("level=warn component=bootstrap msg=\"no rabbitmq url; events disabled\" env=RABBITMQ_URL")
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.EventProducerFallback{}
		} else {
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}
	defer producer.Close()

	// Initialize the token issuer for signup/login and request authentication.
	tokens := token.NewIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	// Initialize the core application service with its dependencies.
	bankService := app.NewService(repository, tokens, producer, cfg.BankCode, openingBalance)

	// Optional distributed transfer rate limiting.
	if cfg.TransferRatePerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; transfer rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; transfer rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				pingErr := redisClient.Ping(pingCtx).Err()
				cancelPing()
				if pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; transfer rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					bankService.SetTransferRateLimiter(
						app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
						cfg.TransferRatePerMinute,
					)
					log.Printf("level=info component=bootstrap msg=\"redis connected; transfer rate limiting enabled\" per_minute=%d", cfg.TransferRatePerMinute)
				}
			}
		}
	}

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(bankService)
	router := api.Routes(handlers, tokens)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
