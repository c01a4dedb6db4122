package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"clinic-booking/internal/booking"
	"clinic-booking/internal/calendar"
	"clinic-booking/internal/config"
	"clinic-booking/internal/gateway"
	"clinic-booking/internal/handler"
	"clinic-booking/internal/logger"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/middleware"
	"clinic-booking/internal/queue"
	"clinic-booking/internal/rpc"
	"clinic-booking/internal/session"
	"clinic-booking/internal/store"
	"clinic-booking/internal/store/postgres"
	"clinic-booking/internal/worker"
)

// repository is what the handler and booking flow need from a store backend.
type repository interface {
	handler.Registrar
	session.Identity
	booking.Repository
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	opts := store.Options{Policy: cfg.Password, BcryptCost: cfg.BcryptCost}

	// storage
	var repo repository
	switch cfg.StoreBackend {
	case "postgres":
		dbPool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			lg.Fatal("postgres", zap.Error(err))
		}
		defer dbPool.Close()
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			lg.Fatal("migrations", zap.Error(err))
		}
		pg, err := postgres.New(dbPool, opts)
		if err != nil {
			lg.Fatal("postgres store", zap.Error(err))
		}
		repo = pg
		lg.Info("connected to postgres")
	default:
		mem, err := store.New(opts)
		if err != nil {
			lg.Fatal("memory store", zap.Error(err))
		}
		repo = mem
		lg.Info("using in-memory store")
	}

	// sessions
	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		rs, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			lg.Fatal("redis", zap.Error(err))
		}
		defer rs.Close()
		sessions = rs
	default:
		sessions = session.NewMemoryStore()
	}

	pool := worker.NewPool(lg)
	if mem, ok := sessions.(*session.MemoryStore); ok {
		pool.Submit(func(ctx context.Context) { mem.Janitor(ctx, time.Minute) })
	}

	// calendar is optional; bookings are marked skipped without it
	var cal calendar.Adapter
	if cfg.Google.Enabled() {
		g, err := calendar.NewGoogle(ctx, cfg.Google)
		if err != nil {
			lg.Fatal("google calendar", zap.Error(err))
		}
		cal = g
	} else {
		lg.Warn("google calendar not configured, calendar sync disabled")
	}

	pub := queue.NewNoop()
	if cfg.AMQPURL != "" {
		rp, err := queue.NewRabbit(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			lg.Fatal("rabbitmq", zap.Error(err))
		}
		pub = rp
	}
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	gate := session.NewGate(repo, sessions, cfg.JWTSecret, cfg.SessionTTL, lg)
	svc := booking.New(gate, repo, booking.Options{
		Calendar:        cal,
		CalendarTimeout: cfg.CalendarTimeout,
		Publisher:       pub,
		Pool:            pool,
		Log:             lg,
	})
	h := handler.New(repo, gate, svc, lg)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Close()
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.Logging(lg),
			middleware.RateLimit(rl),
			middleware.Session(cfg.JWTSecret),
		),
	)
	rpc.RegisterBookingServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		lg.Fatal("listen", zap.Error(err))
	}
	go func() {
		lg.Info("grpc listening", zap.String("port", cfg.GRPCPort))
		if err := srv.Serve(lis); err != nil {
			lg.Error("grpc", zap.Error(err))
		}
	}()

	// http gateway
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	gw := gateway.New(h, gateway.Options{
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.Production(),
		Limiter:      rl,
		Log:          lg,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           gw.Router(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("http listening", zap.String("port", cfg.WebPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	pool.Shutdown(cfg.ShutdownTimeout)
}
