package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/httpapi"
	"github.com/hamed0406/uptimemonitor/internal/logging"
	"github.com/hamed0406/uptimemonitor/internal/notify"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/report"
	"github.com/hamed0406/uptimemonitor/internal/scheduler"
	"github.com/hamed0406/uptimemonitor/internal/store"
	"github.com/hamed0406/uptimemonitor/internal/store/duckdb"
	"github.com/hamed0406/uptimemonitor/internal/store/postgres"
	"github.com/hamed0406/uptimemonitor/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "monitor.yaml", "path to the YAML config file")
		reportMode  = flag.Bool("report", false, "generate reports and exit instead of monitoring")
		reportDate  = flag.String("date", "", "report a single day, YYYY-MM-DD (implies -report)")
		reportDays  = flag.Int("days", 0, "report each of the last N days (implies -report)")
		reportToday = flag.Bool("today", false, "report the current day (implies -report)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer results.Close()

	reporter := report.New(logger, results, cfg.ReportsDir)

	if *reportMode || *reportDate != "" || *reportDays > 0 || *reportToday {
		return runReports(ctx, reporter, cfg.URL, *reportDate, *reportDays, *reportToday)
	}
	return runMonitor(ctx, logger, cfg, results, reporter)
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.ResultStore, error) {
	if cfg.DatabaseURL != "" {
		return postgres.New(ctx, cfg.DatabaseURL, logger)
	}
	return duckdb.New(ctx, cfg.DBPath, logger)
}

// runReports prints the artifact path for each requested day, or a note
// when a day has no data.
func runReports(ctx context.Context, r *report.Reporter, url, date string, days int, today bool) error {
	var targets []time.Time
	now := time.Now()
	switch {
	case date != "":
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return fmt.Errorf("parsing -date: %w", err)
		}
		targets = append(targets, day)
	case days > 0:
		for i := days - 1; i >= 0; i-- {
			targets = append(targets, now.AddDate(0, 0, -i))
		}
	case today:
		targets = append(targets, now)
	default:
		// Bare -report covers yesterday, the most recent complete day.
		targets = append(targets, now.AddDate(0, 0, -1))
	}

	for _, day := range targets {
		path, err := r.Daily(ctx, url, day)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Printf("no data for %s\n", day.Format("2006-01-02"))
			continue
		}
		fmt.Println(path)
	}
	return nil
}

func runMonitor(ctx context.Context, logger *zap.Logger, cfg config.Config, results store.ResultStore, reporter *report.Reporter) error {
	topic, sub, err := notify.OpenQueue(ctx, cfg.QueueURL)
	if err != nil {
		return fmt.Errorf("opening alert queue: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sub.Shutdown(sctx)
		_ = topic.Shutdown(sctx)
	}()

	track := tracker.New(cfg.URL)
	checker := probe.NewHTTPChecker(cfg.ProbeTimeout())
	dispatcher := notify.NewDispatcher(logger, cfg.Alerts, topic)
	worker := notify.NewWorker(logger, sub, notify.Channels(cfg.Alerts))
	monitor := scheduler.New(logger, cfg, checker, results, track, dispatcher, reporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return monitor.Run(gctx) })
	g.Go(func() error { return worker.Run(gctx) })

	if cfg.APIAddr != "" {
		api := httpapi.NewServer(logger, cfg.URL, results, track)
		srv := &http.Server{Addr: cfg.APIAddr, Handler: api.Router()}
		g.Go(func() error {
			logger.Info("api_listen", zap.String("addr", cfg.APIAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
