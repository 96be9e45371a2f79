package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rfaria/traindesk/libs/config"
	"github.com/rfaria/traindesk/libs/db"
	"github.com/rfaria/traindesk/libs/httpx"
	"github.com/rfaria/traindesk/libs/kafkax"
	otelx "github.com/rfaria/traindesk/libs/otel"
	"github.com/rfaria/traindesk/libs/runtime"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/events"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/gcal"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/handlers"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/storage"
	"github.com/rfaria/traindesk/services/scheduling-service/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8084")
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

	loc, err := time.LoadLocation(config.String("SCHEDULE_TZ", "Local"))
	if err != nil {
		logger.Error("invalid SCHEDULE_TZ; using system local time", "err", err)
		loc = time.Local
	}

	secret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	snaps, readyChecks, rdb := openSnapshots(ctx, logger)

	st := store.New(snaps, logger, loc)
	if err := st.Load(ctx); err != nil {
		logger.Error("state load failed", "err", err)
		panic(err)
	}

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(brokers, logger)
	go publisher.Run(ctx)
	if brokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	providerClient := gcal.NewClient(
		config.String("CALENDAR_API_BASE_URL", ""),
		time.Duration(config.Int("CALENDAR_FETCH_TIMEOUT_SECONDS", 10))*time.Second,
	)
	orchestrator := gcal.NewOrchestrator(st, providerClient, logger,
		config.Bool("SYNC_SYNTHETIC_FALLBACK", true))

	authHandler := handlers.NewAuthHandler(st, logger, secret,
		time.Duration(config.Int("TOKEN_TTL_MINUTES", 720))*time.Minute)
	bookingHandler := handlers.NewBookingHandler(st, publisher, logger, secret)
	rosterHandler := handlers.NewRosterHandler(st, logger, secret)
	calendarHandler := handlers.NewCalendarHandler(st, orchestrator, publisher, logger, secret)

	mux := runtime.NewBaseMux(readyChecks...)

	loginLimiter := newLoginLimiter(rdb, logger)
	mux.Handle("/api/v1/auth/register", loginLimiter(http.HandlerFunc(authHandler.Register)))
	mux.Handle("/api/v1/auth/login", loginLimiter(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("/api/v1/auth/me", authHandler.Me)
	mux.HandleFunc("/api/v1/consultants", rosterHandler.ListOrCreate)
	mux.HandleFunc("/api/v1/consultants/update", rosterHandler.Update)
	mux.HandleFunc("/api/v1/consultants/delete", rosterHandler.Delete)
	mux.HandleFunc("/api/v1/occupancy", bookingHandler.Occupancy)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/book", bookingHandler.Book)
	mux.HandleFunc("/api/v1/appointments/remove", bookingHandler.Remove)
	mux.HandleFunc("/api/v1/calendar/sync", calendarHandler.Sync)
	mux.HandleFunc("/api/v1/calendar/disconnect", calendarHandler.Disconnect)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
	)
	handler = otelhttp.NewHandler(handler, "scheduling")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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

// openSnapshots selects the snapshot backend from STORE_DRIVER:
// redis (default), postgres, or memory for throwaway demos.
func openSnapshots(ctx context.Context, logger *slog.Logger) (storage.Snapshots, []runtime.ReadyCheck, *redis.Client) {
	switch driver := config.String("STORE_DRIVER", "redis"); driver {
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			panic(err)
		}
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		snaps := storage.NewPostgresSnapshots(pool)
		if err := snaps.Migrate(ctx); err != nil {
			logger.Error("snapshot table migration failed", "err", err)
			panic(err)
		}
		return snaps, []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}, nil

	case "memory":
		logger.Warn("using in-memory snapshots; state will not survive a restart")
		return storage.NewMemory(), nil, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: config.String("REDIS_ADDR", "localhost:6379"),
		})
		snaps := storage.NewRedisSnapshots(rdb, config.String("REDIS_KEY_PREFIX", "traindesk"))
		return snaps, []runtime.ReadyCheck{{Name: "redis", Check: storage.ReadyCheck(rdb)}}, rdb

	default:
		logger.Error("unknown STORE_DRIVER", "driver", driver)
		panic("unknown STORE_DRIVER " + driver)
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// newLoginLimiter guards the credential endpoints: Redis-backed when the
// Redis driver is active, in-process otherwise.
func newLoginLimiter(rdb *redis.Client, logger *slog.Logger) httpx.Middleware {
	limit := config.Int("LOGIN_RATE_LIMIT", 20)
	window := time.Duration(config.Int("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second
	if rdb != nil {
		return httpx.NewRedisRateLimiter(rdb, limit, window, "login").Middleware(logger, true)
	}
	return httpx.NewRateLimiter(limit, window).Middleware()
}
