package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eara_connect_portal/internal/infra/redisstore"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Relay forwards backend notifications to Telegram.
type Relay interface {
	ForwardUnread(ctx context.Context) error
	SendReviewDigest(ctx context.Context) error
}

// Warmer re-populates the shared query cache ahead of dashboard polls.
type Warmer interface {
	RefreshQueues(ctx context.Context) error
	RefreshStats(ctx context.Context) error
}

// Locker keeps a job from running on two portal instances at once.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

type Specs struct {
	Relay        string
	QueueRefresh string
	StatsRefresh string
	Digest       string
}

type PortalScheduler struct {
	cronEngine *cron.Cron
	relay      Relay
	warmer     Warmer
	locker     Locker
	logger     *logrus.Entry
	specs      Specs
}

// NewPortalScheduler wires the jobs. relay and locker may be nil when Telegram or Redis are not configured.
func NewPortalScheduler(relay Relay, warmer Warmer, locker Locker, logger *logrus.Entry, specs Specs) *PortalScheduler {
	return &PortalScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		relay:      relay,
		warmer:     warmer,
		locker:     locker,
		logger:     logger,
		specs:      specs,
	}
}

type job struct {
	name    string
	spec    string
	timeout time.Duration
	locked  bool
	run     func(ctx context.Context) error
}

func (s *PortalScheduler) jobs() []job {
	var jobs []job
	if s.warmer != nil {
		jobs = append(jobs,
			job{name: "queue_refresh", spec: s.specs.QueueRefresh, timeout: time.Minute, run: s.warmer.RefreshQueues},
			job{name: "stats_refresh", spec: s.specs.StatsRefresh, timeout: 2 * time.Minute, run: s.warmer.RefreshStats},
		)
	}
	if s.relay != nil {
		jobs = append(jobs,
			job{name: "telegram_relay", spec: s.specs.Relay, timeout: time.Minute, locked: true, run: s.relay.ForwardUnread},
			job{name: "review_digest", spec: s.specs.Digest, timeout: 5 * time.Minute, locked: true, run: s.relay.SendReviewDigest},
		)
	}
	return jobs
}

func (s *PortalScheduler) Start() error {
	s.logger.Info("Starting portal scheduler...")

	for _, j := range s.jobs() {
		if j.spec == "" {
			s.logger.WithField("job", j.name).Info("No cron spec configured, job disabled")
			continue
		}
		j := j
		if _, err := s.cronEngine.AddFunc(j.spec, func() { s.execute(j) }); err != nil {
			return fmt.Errorf("could not add %s cron job (%q): %w", j.name, j.spec, err)
		}
		s.logger.WithFields(logrus.Fields{"job": j.name, "spec": j.spec}).Info("Cron job registered")
	}

	s.cronEngine.Start()
	s.logger.Info("Portal scheduler started with jobs.")
	return nil
}

func (s *PortalScheduler) execute(j job) {
	log := s.logger.WithField("job", j.name)
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	var err error
	if j.locked && s.locker != nil {
		err = s.locker.WithLock(ctx, j.name, j.timeout, j.run)
		if errors.Is(err, redisstore.ErrLocked) {
			log.Debug("Another instance holds the job lock, skipping")
			return
		}
	} else {
		err = j.run(ctx)
	}
	if err != nil {
		log.WithError(err).Error("Cron job failed")
		return
	}
	log.WithField("duration", time.Since(start).String()).Debug("Cron job finished")
}

// Stop stops scheduling new runs and waits for running jobs.
func (s *PortalScheduler) Stop() {
	s.logger.Info("Stopping portal scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Portal scheduler gracefully stopped.")
}
