package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/eamonmason/kwcc-tdz/config"
	"github.com/eamonmason/kwcc-tdz/db"
	"github.com/eamonmason/kwcc-tdz/handlers"
	applog "github.com/eamonmason/kwcc-tdz/logger"
	mw "github.com/eamonmason/kwcc-tdz/middleware"
	"github.com/eamonmason/kwcc-tdz/tour"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	tc := tour.Default()
	if cfg.TourFile != "" {
		tc, err = tour.Load(cfg.TourFile)
		if err != nil {
			logger.Fatal("load tour config failed", zap.Error(err))
		}
	}
	logger.Info("tour loaded", zap.String("tour", tc.TourID), zap.Int("stages", len(tc.Stages)))

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	h := handlers.New(bdb, cfg.JWTKey(), tc)

	e := echo.New()
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
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/tdz/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	tdz := e.Group("/tdz", mw.JWT(cfg.JWTKey()))
	tdz.GET("/riders", h.Riders)
	tdz.POST("/riders", h.UpsertRiders)
	tdz.GET("/results", h.RawResults)
	tdz.POST("/results", h.IngestResults)
	tdz.GET("/overrides", h.Overrides)
	tdz.POST("/overrides", h.CreateOverride)
	tdz.GET("/events", h.Events)
	tdz.POST("/events", h.SaveEvents)
	tdz.POST("/events/score", h.ScoreEvents)
	tdz.GET("/stages/:number/standings", h.StageStandings)
	tdz.GET("/gc", h.GC)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
