package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pagecraft/core/internal/config"
	"github.com/pagecraft/core/internal/database"
	"github.com/pagecraft/core/internal/middleware"
	pkgcron "github.com/pagecraft/core/internal/pkg/cron"
	"github.com/pagecraft/core/internal/pkg/jwt"
	pkgredis "github.com/pagecraft/core/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	signer *jwt.Signer
	logger *zap.Logger
	sched  *pkgcron.Scheduler
	cancel context.CancelFunc
}

// New initializes the application: DB, Redis, admin bootstrap, routes and
// background workers.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(context.Background(), pkgredis.Options{
		URL:      cfg.Redis.URL,
		Addr:     net.JoinHostPort(cfg.Redis.Host, strconv.Itoa(cfg.Redis.Port)),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("redis: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("jwt_secret is empty, using development secret")
		secret = "pagecraft-dev-secret"
	}
	signer, err := jwt.NewSigner(secret, cfg.JWTTTL)
	if err != nil {
		_ = rc.Close()
		_ = database.Close(db)
		return nil, fmt.Errorf("jwt: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))
	if !cfg.RateLimit.Disable {
		router.Use(middleware.RateLimit(rc.Raw(), cfg.RateLimit.Max, logger))
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rc:     rc,
		signer: signer,
		logger: logger,
		sched:  pkgcron.New(logger.Named("cron")),
		cancel: cancel,
	}
	if err := a.registerRoutes(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}
	go a.sched.Start(ctx)
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background workers and closes connections.
func (a *App) Shutdown() {
	a.cancel()
	if err := a.rc.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}
