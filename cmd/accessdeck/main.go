package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/audit"
	"github.com/accessdeck/accessdeck/internal/config"
	"github.com/accessdeck/accessdeck/internal/db"
	"github.com/accessdeck/accessdeck/internal/httpserver"
	"github.com/accessdeck/accessdeck/internal/logging"
	"github.com/accessdeck/accessdeck/internal/middleware"
	"github.com/accessdeck/accessdeck/internal/notify"
	"github.com/accessdeck/accessdeck/internal/repo"
	"github.com/accessdeck/accessdeck/internal/service"
	"github.com/accessdeck/accessdeck/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: gormDB}

	issuer := &tokens.Issuer{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.EmailTopic)
		defer kn.Close()
		notifier = kn
	}

	var recorder *audit.Recorder
	if cfg.ESURL != "" {
		recorder, err = audit.NewRecorder(&elasticsearch.Config{
			Addresses: []string{cfg.ESURL},
			Username:  cfg.ESUser,
			Password:  cfg.ESPassword,
		}, cfg.ESAuditIndex)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	authSvc := &service.AuthService{
		Repo:     gormRepo,
		Tokens:   issuer,
		Notifier: notifier,
		Audit:    recorder,
		Cfg:      cfg,
	}
	permSvc := &service.PermissionService{Repo: gormRepo}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:        &httpserver.AuthHTTP{Svc: authSvc},
		Users:       &httpserver.UserHTTP{Svc: authSvc},
		Permissions: &httpserver.PermissionHTTP{Svc: permSvc},
		BearerAuth:  middleware.NewBearerAuth(issuer, gormRepo),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
