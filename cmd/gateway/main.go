package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/config"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/correlation"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/db"
	internalhttp "github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/http"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/invoicing"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/services"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/smepay"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	processor, err := smepay.New(smepay.Config{
		ClientID:     cfg.SMEPay.ClientID,
		ClientSecret: cfg.SMEPay.ClientSecret,
		Environment:  cfg.SMEPay.Environment,
		Timeout:      time.Duration(cfg.SMEPay.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("smepay client init failed: %v", err)
	}

	ttl := time.Duration(cfg.Correlation.TTLMinutes) * time.Minute
	var correlations correlation.Store
	switch cfg.Correlation.Backend {
	case "memory":
		correlations = correlation.NewMemory(ttl)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis connect failed: %v", err)
		}
		correlations = correlation.NewRedis(rdb, "", ttl)
	case "postgres":
		correlations = correlation.NewPostgres(pool, ttl)
	default:
		log.Fatalf("unknown correlation backend %q", cfg.Correlation.Backend)
	}

	invoices := invoicing.NewStore(pool)
	audit := invoicing.NewLog(pool)

	initiator := &services.Initiator{
		Processor:    processor,
		Correlations: correlations,
		Audit:        audit,
		ClientID:     cfg.SMEPay.ClientID,
		ClientSecret: cfg.SMEPay.ClientSecret,
		CallbackURL:  cfg.SMEPay.CallbackURL,
	}
	reconciler := &services.Reconciler{
		Processor:    processor,
		Correlations: correlations,
		Invoices:     invoices,
		Audit:        audit,
	}

	sweeper := &correlation.Sweeper{
		Store:    correlations,
		Interval: time.Duration(cfg.Correlation.SweepIntervalMinutes) * time.Minute,
	}
	go sweeper.Run(ctx)

	h := internalhttp.NewHandler(initiator, reconciler, invoices, cfg.Invoicing.SystemURL)
	srv := internalhttp.NewServer(h)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Printf("gateway listening on %s (env=%s)", cfg.Server.Addr, cfg.SMEPay.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}
