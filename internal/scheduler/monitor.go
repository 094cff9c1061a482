package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/store"
	"github.com/hamed0406/uptimemonitor/internal/tracker"
)

// AlertDispatcher accepts state-transition intents. Implementations must
// never propagate delivery problems back to the probe loop.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, intent *tracker.Intent)
}

// ReportGenerator produces the daily artifact for one calendar day.
type ReportGenerator interface {
	Daily(ctx context.Context, url string, day time.Time) (string, error)
}

// Monitor drives the two long-running loops: the probe loop on the
// configured cadence and the maintenance loop for reports and pruning.
type Monitor struct {
	log        *zap.Logger
	cfg        config.Config
	checker    probe.Checker
	results    store.ResultStore
	track      *tracker.Tracker
	dispatcher AlertDispatcher
	reporter   ReportGenerator

	storeBackoff    time.Duration
	maintenanceTick time.Duration
	now             func() time.Time
}

func New(
	log *zap.Logger,
	cfg config.Config,
	checker probe.Checker,
	results store.ResultStore,
	track *tracker.Tracker,
	dispatcher AlertDispatcher,
	reporter ReportGenerator,
) *Monitor {
	return &Monitor{
		log:             log,
		cfg:             cfg,
		checker:         checker,
		results:         results,
		track:           track,
		dispatcher:      dispatcher,
		reporter:        reporter,
		storeBackoff:    time.Minute,
		maintenanceTick: 5 * time.Minute,
		now:             time.Now,
	}
}

// Run blocks until ctx is cancelled, then writes a best-effort report for
// the current day before returning. Cancellation is a clean stop, not an
// error.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("monitor_started",
		zap.String("url", m.cfg.URL),
		zap.Duration("check_interval", m.cfg.Interval()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.probeLoop(gctx) })
	g.Go(func() error { return m.maintenanceLoop(gctx) })
	err := g.Wait()

	m.finalReport()

	m.log.Info("monitor_stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *Monitor) probeLoop(ctx context.Context) error {
	for {
		wait := m.cycle(ctx)
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// cycle runs one probe and returns how long to wait before the next one.
// A storage failure skips state tracking for this sample and backs off.
func (m *Monitor) cycle(ctx context.Context) time.Duration {
	res := m.checker.Check(ctx, m.cfg.URL)

	if err := m.results.Append(ctx, &res); err != nil {
		m.log.Error("check_cycle_failed", zap.Error(err))
		return m.storeBackoff
	}

	intent := m.track.Observe(res)
	if res.Up {
		m.log.Info("check_ok",
			zap.Int64("status_code", res.StatusCode.Int64),
			zap.Float64("response_time", res.ResponseTime.Float64),
		)
	} else {
		snap := m.track.Snapshot()
		m.log.Warn("check_failed",
			zap.Int("consecutive_failures", snap.ConsecutiveFailures),
			zap.Int64("status_code", res.StatusCode.Int64),
			zap.String("error", res.ErrorMessage.String),
		)
	}
	if intent != nil {
		m.dispatcher.Dispatch(ctx, intent)
	}
	return m.cfg.Interval()
}

func (m *Monitor) maintenanceLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.maintenanceTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.maintenance(ctx, m.now())
		}
	}
}

// maintenance runs the time-window chores: yesterday's report shortly
// after midnight, pruning early Sunday morning. The windows are coarse
// on purpose, an occasional duplicate run is harmless.
func (m *Monitor) maintenance(ctx context.Context, now time.Time) {
	if now.Hour() == 0 && now.Minute() <= 5 {
		yesterday := now.AddDate(0, 0, -1)
		if _, err := m.reporter.Daily(ctx, m.cfg.URL, yesterday); err != nil {
			m.log.Error("daily_report_failed", zap.Error(err))
		}
	}

	if now.Weekday() == time.Sunday && now.Hour() == 2 && now.Minute() <= 5 {
		removed, err := m.results.Prune(ctx, m.cfg.DaysToKeep)
		if err != nil {
			m.log.Error("prune_failed", zap.Error(err))
		} else if removed > 0 {
			m.log.Info("pruned_old_checks", zap.Int64("removed", removed))
		}
	}
}

// finalReport covers the partial current day so a shutdown does not lose
// it. Failures are logged and swallowed.
func (m *Monitor) finalReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := m.reporter.Daily(ctx, m.cfg.URL, m.now()); err != nil {
		m.log.Warn("final_report_failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
