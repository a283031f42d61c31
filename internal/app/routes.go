package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pagecraft/core/internal/config"
	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/modules/auth/user"
	"github.com/pagecraft/core/internal/modules/content/block"
	"github.com/pagecraft/core/internal/modules/content/menu"
	"github.com/pagecraft/core/internal/modules/content/section"
	"github.com/pagecraft/core/internal/modules/storage/backup"
	"github.com/pagecraft/core/internal/modules/system/health"
	"github.com/pagecraft/core/internal/modules/system/util/slugtracker"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/drafts"
	"github.com/pagecraft/core/internal/pkg/menutree"
	"github.com/pagecraft/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

var processStart = time.Now()

func (a *App) registerRoutes(ctx context.Context) error {
	r := a.router
	authMW := middleware.Auth(a.signer)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })
	r.Use(middleware.Idempotence(a.rc.Raw()))

	// Every instance purges its cached public responses on any change; the
	// publisher fans the change out to the other instances.
	purge := changes.Func(func(ctx context.Context, ch changes.Change) {
		if _, err := middleware.PurgeHTTPCache(ctx, a.rc.Raw()); err != nil {
			a.logger.Warn("purge http cache", zap.String("kind", string(ch.Kind)), zap.Error(err))
		}
	})
	onChange := changes.Fanout(purge, changes.RedisPublisher(a.rc, a.logger))
	go changes.Subscribe(ctx, a.rc, a.logger, purge)

	store := a.draftStore()
	slugSvc := slugtracker.NewService(a.db)

	userSvc := user.NewService(user.NewRepository(a.db), a.signer, a.logger)
	if _, err := userSvc.Bootstrap(ctx, a.cfg.Admin); err != nil {
		return err
	}

	sectionSvc := section.NewService(section.NewRepository(a.db), a.logger, a.cfg.Form.KeepOneEntry, onChange)
	blockSvc := block.NewService(block.NewRepository(a.db), sectionSvc, store, onChange)
	menuSvc := menu.NewService(menu.NewRepository(a.db), store, slugSvc, menuTreeOptions(a.cfg, a.logger), onChange)
	backupSvc := backup.NewService(backup.NewSource(a.db), backup.NewStore(a.cfg.Backup.S3, a.cfg.BackupDir()), a.logger)
	a.registerCronJobs(backupSvc, slugSvc)

	api := r.Group(apiPrefix)
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"timestamp": time.Since(processStart).Milliseconds()})
	})
	health.RegisterRoutes(api, []health.Check{health.Database(a.db), health.Redis(a.rc)}, a.cfg.LogDir(), authMW)

	user.NewHandler(userSvc).RegisterRoutes(api, authMW)
	section.NewHandler(sectionSvc).RegisterRoutes(api, authMW)
	block.NewHandler(blockSvc).RegisterRoutes(api, authMW)

	menuHandler := menu.NewHandler(menuSvc)
	menuHandler.RegisterRoutes(api, authMW)
	menuHandler.RegisterPublicRoutes(api, middleware.HTTPCache(a.rc.Raw(), middleware.HTTPCacheOptions{
		TTL:     a.cfg.HTTPCache.TTL,
		Disable: a.cfg.HTTPCache.Disable,
	}))

	slugtracker.NewHandler(slugSvc).RegisterRoutes(api, authMW)
	backup.NewHandler(backupSvc, a.sched).RegisterRoutes(api, authMW)
	return nil
}

func (a *App) draftStore() drafts.Store {
	if a.cfg.Drafts.Driver == config.DraftDriverMemory {
		a.logger.Warn("drafts are kept in process memory and lost on restart")
		return drafts.NewMemoryStore(a.cfg.Drafts.TTL)
	}
	return drafts.NewRedisStore(a.rc, a.cfg.Drafts.TTL)
}

func menuTreeOptions(cfg *config.AppConfig, logger *zap.Logger) []menutree.Option {
	return []menutree.Option{
		menutree.WithLogger(logger.Named("menutree")),
		menutree.WithRequireLogo(cfg.Menu.RequireLogo),
		menutree.WithLinkMinLength(cfg.Menu.LinkMinLength),
	}
}
