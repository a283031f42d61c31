package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/modules/storage/backup"
	"github.com/pagecraft/core/internal/modules/system/util/slugtracker"
	pkgcron "github.com/pagecraft/core/internal/pkg/cron"
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs(backups *backup.Service, slugs *slugtracker.Service) {
	cronLogger := a.logger.Named("CronService")

	if a.cfg.Backup.Enable {
		a.sched.Register(backup.Job(backups, a.cfg.Backup.Interval))
	}

	a.sched.Register(pkgcron.Job{
		Name:        "prune_slug_trackers",
		Description: "remove renamed-slug entries of deleted menus",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := slugs.PruneMenus(ctx)
			if err != nil {
				return err
			}
			cronLogger.Info(fmt.Sprintf("pruned %d slug tracker entries", n))
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "purge_http_cache",
		Description: "drop every cached public response",
		Interval:    6 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := middleware.PurgeHTTPCache(ctx, a.rc.Raw())
			if err != nil {
				return err
			}
			cronLogger.Debug("http cache purged", zap.Int64("keys", n))
			return nil
		},
	})
}
