package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agendaly/agendaly-api/internal/booking"
	"github.com/agendaly/agendaly-api/internal/events"
	"github.com/agendaly/agendaly-api/internal/handlers"
	"github.com/agendaly/agendaly-api/internal/identity"
	"github.com/agendaly/agendaly-api/internal/notify"
	"github.com/agendaly/agendaly-api/internal/storage"
	"github.com/agendaly/agendaly-api/libs/config"
	"github.com/agendaly/agendaly-api/libs/db"
	"github.com/agendaly/agendaly-api/libs/httpx"
	"github.com/agendaly/agendaly-api/libs/kafkax"
	otelx "github.com/agendaly/agendaly-api/libs/otel"
	"github.com/agendaly/agendaly-api/libs/runtime"
)

// limitPaths applies a rate-limit middleware to a path prefix only, so
// the public booking surface and login are throttled without taxing
// authenticated traffic.
func limitPaths(limited httpx.Middleware, prefixes ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range prefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					guarded.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "agendaly-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	store := storage.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("schema bootstrap failed", "err", err)
		panic(err)
	}

	tokenTTL := time.Duration(config.Int("TOKEN_TTL_HOURS", 24)) * time.Hour
	resolver := identity.NewResolver(store, jwtSecret, tokenTTL)
	notifier := notify.NewNotifier(store, logger)

	var sender notify.Sender
	if host := config.String("SMTP_HOST", ""); host != "" {
		sender = &notify.SMTPSender{
			Host: host,
			Port: config.String("SMTP_PORT", "587"),
			User: config.String("SMTP_USER", ""),
			Pass: config.String("SMTP_PASS", ""),
			From: config.String("SMTP_FROM", "no-reply@agendaly.app"),
		}
	} else {
		sender = &notify.NoopSender{Log: logger}
	}
	mailer := notify.NewMailer(sender, logger)
	go mailer.Run(ctx)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(kafkax.SplitBrokers(kafkaBrokers), logger)
	go publisher.Run(ctx)

	orchestrator := booking.NewOrchestrator(store, notifier, mailer, publisher, identity.RandomPassword)

	h := handlers.New(store, resolver, notifier, mailer, publisher, orchestrator,
		config.String("STRIPE_WEBHOOK_SECRET", ""), logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if publisher.Enabled() {
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers),
		})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	h.Routes(mux)

	// public booking and login are throttled; Redis makes the window
	// shared across instances, the in-memory limiter is the fallback
	var limiter httpx.Middleware
	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
		})
		defer rdb.Close()
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).
			Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
		limitPaths(limiter, "/api/public/", "/api/auth/login"),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
