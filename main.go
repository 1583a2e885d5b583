package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/multibuilder/apiclient"
	"github.com/padraicbc/multibuilder/builder"
	"github.com/padraicbc/multibuilder/cache"
	"github.com/padraicbc/multibuilder/config"
	"github.com/padraicbc/multibuilder/db"
	"github.com/padraicbc/multibuilder/handlers"
	applog "github.com/padraicbc/multibuilder/logger"
	mw "github.com/padraicbc/multibuilder/middleware"
	"github.com/padraicbc/multibuilder/session"
	"github.com/padraicbc/multibuilder/view"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional slip ledger.
	var recorder builder.SlipRecorder
	if cfg.LedgerEnabled() {
		bdb := db.Setup(cfg)
		defer bdb.Close()
		if err := db.CreateTables(ctx, bdb); err != nil {
			logger.Fatal("create tables failed", zap.Error(err))
		}
		recorder = db.NewLedger(bdb)
		logger.Info("slip ledger enabled")
	}

	// Optional response cache.
	var apiCache apiclient.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("connect redis failed", zap.Error(err))
		}
		defer func() { _ = rc.Close() }()
		apiCache = rc
		logger.Info("response cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	api := apiclient.NewClient(apiclient.ClientConfig{
		BaseURL:      cfg.APIBaseURL,
		MatchupsPath: cfg.MatchupsPath,
		Timeout:      cfg.APITimeout,
		Cache:        apiCache,
		CacheTTL:     cfg.CacheTTL,
		Logger:       logger,
	})

	store := session.NewStore(cfg.SessionTTL, func(id string) *builder.Controller {
		return builder.New(api, builder.Options{
			RequireLocks: cfg.RequireLocks,
			SessionID:    id,
			Recorder:     recorder,
			Logger:       logger,
		})
	}, logger)
	go store.Run(ctx, time.Minute)

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("parse templates failed", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if id := mw.SessionID(c); id != "" {
				fields = append(fields, zap.String("session", id))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	sessionMW := mw.Session(mw.SessionConfig{
		Store:  store,
		Key:    cfg.SessionKey(),
		TTL:    cfg.SessionTTL,
		Secure: !cfg.Debug,
		Logger: logger,
	})
	handlers.New(store, logger).Register(e, sessionMW)

	// Embedded stylesheet
	staticServer := http.StripPrefix("/static/", http.FileServer(http.FS(view.Static())))
	e.GET("/static/*", echo.WrapHandler(staticServer))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	e.Server = &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("starting server", zap.String("mode", "tls"), zap.Strings("domains", cfg.TLSDomains))
	if err := e.Server.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
