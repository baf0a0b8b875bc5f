package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/donote/donote/app/controllers"
	"github.com/donote/donote/app/repository"
	"github.com/donote/donote/internal/pkg/cache"
	"github.com/donote/donote/internal/pkg/env"
	"github.com/donote/donote/internal/pkg/metrics/counter"
	"github.com/donote/donote/internal/pkg/middleware"
	"github.com/donote/donote/internal/pkg/portone"
	"github.com/donote/donote/internal/pkg/ratelimit"
	"github.com/donote/donote/internal/pkg/reconciliation"
	"github.com/donote/donote/internal/pkg/report"
	"github.com/donote/donote/internal/pkg/settlement"
)

// Dependencies holds the services behind the API routes.
type Dependencies struct {
	RateLimiter  fiber.Handler
	Reconciler   controllers.WebhookReconciler
	Settlement   controllers.SettlementRunner
	Reports      *report.Service
	Archiver     *report.Archiver
	WebhookStats controllers.WebhookStats
	CronSecret   string
	AdminAPIKey  string
}

// NewDependencies wires the services from the global repositories, the Redis
// client and the environment. Report archiving stays disabled when its S3
// settings are missing or invalid.
func NewDependencies(ctx context.Context) *Dependencies {
	repos := repository.GetGlobalRepositories()
	redisClient := cache.GetClient()

	counters := counter.NewWebhookCounter(redisClient)

	var locker settlement.Locker
	if env.GetEnvBool("SETTLEMENT_LOCK_ENABLED", true) {
		locker = settlement.NewRedisLocker(cache.NewLocker(redisClient))
	} else {
		log.Warn("[Settlement] Run lock disabled, overlapping runs are not excluded")
	}

	reports := report.NewService(repos.Settlement, repos.CreatorInfo)

	rateCfg := ratelimit.ConfigFromEnv()
	log.Infof("[RateLimit] %d requests per %s on /api", rateCfg.Max, rateCfg.Window)

	deps := &Dependencies{
		RateLimiter:  middleware.RateLimit(rateCfg, ratelimit.StorageFromEnv()),
		Reconciler:   reconciliation.NewService(portone.NewClientFromEnv(), repos.Donation, repos.WebhookEvent, counters),
		Settlement:   settlement.NewJob(settlement.NewStore(repos), locker),
		Reports:      reports,
		WebhookStats: counters,
		CronSecret:   env.GetEnv("CRON_SECRET", ""),
		AdminAPIKey:  env.GetEnv("ADMIN_API_KEY", ""),
	}

	if deps.CronSecret == "" {
		log.Warn("[Router] CRON_SECRET is not set, the settlement endpoint rejects every request")
	}
	if deps.AdminAPIKey == "" {
		log.Warn("[Router] ADMIN_API_KEY is not set, admin endpoints reject every request")
	}

	archiveCfg, err := report.LoadArchiveConfig()
	if err != nil {
		log.Errorf("[Report] Invalid archive configuration: %v", err)
		return deps
	}
	if archiveCfg.Enabled {
		archiver, err := report.NewArchiver(ctx, archiveCfg)
		if err != nil {
			log.Errorf("[Report] Archive disabled: %v", err)
			return deps
		}
		deps.Archiver = archiver
	}
	return deps
}
