package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/huiyuanXP/time-block-scheduler/api"
	"github.com/huiyuanXP/time-block-scheduler/config"
	"github.com/huiyuanXP/time-block-scheduler/domain"
	"github.com/huiyuanXP/time-block-scheduler/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	var apiStore api.Storage = store
	var sweeper expirer = store
	if cfg.Redis.Addr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		cache := storage.NewCache(store, rc, cfg.Redis.CacheTTL.Std())
		apiStore = cache
		sweeper = cache
	}

	sessions := api.NewSessions([]byte(cfg.Session.Secret), cfg.Session.TTL.Std())

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	logger := log.New()
	api.Register(e, apiStore, sessions, logger, rate.Limit(cfg.LoginRate))

	cr := cron.New()
	if _, err := cr.AddFunc("@hourly", func() { expireSweep(sweeper, logger) }); err != nil {
		log.Fatalf("cron: %v", err)
	}
	cr.Start()
	defer cr.Stop()
	expireSweep(sweeper, logger)

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

type expirer interface {
	ExpireStickersBefore(ctx context.Context, weekStart string) (int64, error)
}

// expireSweep marks stickers of past weeks as expired.
func expireSweep(store expirer, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	week := domain.WeekStart(time.Now())
	n, err := store.ExpireStickersBefore(ctx, week)
	if err != nil {
		logger.WithError(err).Error("sticker expiry sweep failed")
		return
	}
	if n > 0 {
		logger.WithFields(log.Fields{"week_start": week, "expired": n}).Info("sticker expiry sweep")
	}
}
