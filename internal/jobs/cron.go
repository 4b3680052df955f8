package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
	"github.com/cybersturmer/pmdragon-core-api/internal/repo"
)

// Cron runs the nightly cleanup of expired participation requests.
// An advisory lock keeps the job single-flight across API replicas.
type Cron struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *repo.DB
	requests *repo.RequestsRepo
	c        *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, db *repo.DB, requests *repo.RequestsRepo) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, db: db, requests: requests, c: c}
	_, _ = c.AddFunc(cfg.CleanupCron, cr.cleanup)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	const lockKey int64 = 727001
	ok, err := cr.db.TryAdvisoryLock(ctx, lockKey)
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: lock error")
		return
	}
	if !ok {
		cr.log.Info().Msg("cron: cleanup already running elsewhere")
		return
	}
	defer func() { _ = cr.db.AdvisoryUnlock(context.Background(), lockKey) }()

	deleted, err := cr.requests.DeleteExpired(ctx, time.Now())
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: expired requests cleanup failed")
		return
	}
	cr.log.Info().Int64("deleted", deleted).Msg("cron: expired requests cleaned up")
}
