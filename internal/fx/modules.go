package fx

import (
	"database/sql"

	"buckler-tracker/internal/browser"
	"buckler-tracker/internal/config"
	"buckler-tracker/internal/database"
	"buckler-tracker/internal/db"
	"buckler-tracker/internal/logger"
	"buckler-tracker/internal/repository"
	"buckler-tracker/internal/scheduler"
	"buckler-tracker/internal/scraper"
	"buckler-tracker/internal/server"
	"buckler-tracker/internal/service"
	"buckler-tracker/internal/worker"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideSession(cfg *config.Config, log zerolog.Logger) *browser.Session {
	return browser.NewSession(browser.OptionsFromConfig(cfg), log)
}

func ProvideExtractor(session *browser.Session, cfg *config.Config, log zerolog.Logger) *scraper.Extractor {
	return scraper.NewExtractor(session, cfg, log)
}

// ProvideQueue hands the session to the worker, which owns it from here on.
func ProvideQueue(session *browser.Session, extractor *scraper.Extractor, cfg *config.Config, log zerolog.Logger) *worker.Queue {
	return worker.NewQueue(session, extractor, cfg, log)
}

func ProvideRunner(q *worker.Queue) service.Runner { return q }

func ProvideAuthChecker(session *browser.Session) service.AuthChecker { return session }

func ProvideScheduler(cfg *config.Config, matchSvc *service.MatchService, log zerolog.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg, matchSvc, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewSettingsRepository),
	// browser
	fx.Provide(ProvideSession),
	fx.Provide(ProvideExtractor),
	fx.Provide(ProvideQueue),
	fx.Provide(ProvideRunner),
	fx.Provide(ProvideAuthChecker),
	// svc
	fx.Provide(service.NewReconciler),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewStatusService),
	fx.Provide(ProvideScheduler),
	// server
	fx.Provide(server.NewTrackerServer),
)
