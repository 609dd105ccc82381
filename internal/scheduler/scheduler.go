package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	"github.com/smallbiznis/polisa/internal/clock"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	"github.com/smallbiznis/polisa/internal/ratelimit"
	"github.com/smallbiznis/polisa/internal/scheduler/guard"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobExpireApplications = "expire_applications"

	leaseKeyPrefix = "polisa:lock:scheduler:"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Applications appdomain.Repository
	AuditSvc     auditdomain.Service `optional:"true"`
	Locker       *ratelimit.Locker   `optional:"true"`
	Metrics      *obsmetrics.Metrics `optional:"true"`
	Config       Config              `optional:"true"`
}

type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	genID    *snowflake.Node
	clock    clock.Clock
	apps     appdomain.Repository
	auditSvc auditdomain.Service
	locker   *ratelimit.Locker
	metrics  *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Applications == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:      p.Config.withDefaults(),
		genID:    p.GenID,
		clock:    p.Clock,
		apps:     p.Applications,
		auditSvc: p.AuditSvc,
		locker:   p.Locker,
		metrics:  p.Metrics,
	}, nil
}

// runJob runs fn under a timeout and, when Redis is configured, a lease so
// only one replica runs the job at a time.
func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	fn func(ctx context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	release, ok, err := s.acquireLease(ctx, name)
	if err != nil {
		s.metrics.RecordJobRun(ctx, name, "lease_error", 0)
		return fmt.Errorf("%s: lease: %w", name, err)
	}
	if !ok {
		s.logger(ctx).Debug("job held by another instance", zap.String("job", name))
		s.metrics.RecordJobRun(ctx, name, "skipped", 0)
		return nil
	}
	defer release()

	ctx, run := s.startJobRun(ctx, name, batchSize)
	s.logJobStart(ctx, run)

	err = fn(ctx)
	if err != nil {
		run.IncError()
	}
	s.logJobFinish(ctx, run)

	if err == nil {
		s.metrics.RecordJobRun(ctx, name, "ok", run.processedCount)
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.metrics.RecordJobRun(ctx, name, "timeout", run.processedCount)
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	s.metrics.RecordJobRun(ctx, name, "error", run.processedCount)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) acquireLease(ctx context.Context, name string) (func(), bool, error) {
	if s.locker == nil {
		return func() {}, true, nil
	}
	key := leaseKeyPrefix + name
	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.JobTimeout)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() {
		if err := s.locker.Release(context.Background(), key, token); err != nil {
			s.log.Warn("release scheduler lease failed", zap.String("job", name), zap.Error(err))
		}
	}, true, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{JobExpireApplications, s.ExpireApplicationsJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, s.cfg.BatchSize, job.Run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// ExpireApplicationsJob moves active applications whose cover ended before
// today to expired, one batch per run.
func (s *Scheduler) ExpireApplicationsJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	today := clock.Today(s.clock)

	items, err := s.apps.ListExpiring(ctx, s.db, appdomain.StatusActive, today, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	var errs error
	for _, app := range items {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		if err := guard.EnsureApplicationCanExpire(app.Status, app.ExpiryDate, today); err != nil {
			s.logger(ctx).Debug("application skipped",
				zap.String("application_id", snowflake.ID(app.ID).String()),
				zap.Error(err),
			)
			continue
		}

		ok, err := s.apps.UpdateStatus(ctx, s.db, app.ID, appdomain.StatusActive, appdomain.StatusExpired, s.clock.Now().UTC())
		if err != nil {
			run.IncError()
			errs = errors.Join(errs, err)
			continue
		}
		if !ok {
			continue
		}
		run.AddProcessed(1)

		appID := snowflake.ID(app.ID).String()
		s.logger(ctx).Info("application expired",
			zap.String("application_id", appID),
			zap.String("application_no", app.ApplicationNo),
		)
		s.recordAudit(ctx, auditdomain.ActionApplicationExpire, "application", appID, map[string]any{
			"application_no": app.ApplicationNo,
			"expiry_date":    app.ExpiryDate.Format(time.DateOnly),
		})
	}
	return errs
}

func (s *Scheduler) recordAudit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.Record(ctx, action, targetType, targetID, metadata); err != nil {
		s.logger(ctx).Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
