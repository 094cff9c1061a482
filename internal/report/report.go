package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/store"
)

// Reporter renders one artifact per calendar day: a response-time chart
// titled with the day's uptime statistics. Days with data but fewer than
// two successful samples get a plain-text summary instead (a line chart
// needs two points); days with no data produce nothing.
type Reporter struct {
	log     *zap.Logger
	results store.ResultStore
	dir     string
}

func New(log *zap.Logger, results store.ResultStore, dir string) *Reporter {
	return &Reporter{log: log, results: results, dir: dir}
}

type daySummary struct {
	total      int
	successful int
	uptimePct  float64
	avgSeconds float64
	maxSeconds float64
}

// Daily generates the report for url on the given day and returns the
// artifact path, or "" when the day holds no data.
func (r *Reporter) Daily(ctx context.Context, url string, day time.Time) (string, error) {
	rows, err := r.results.ByDate(ctx, url, day)
	if err != nil {
		return "", fmt.Errorf("loading checks for %s: %w", day.Format("2006-01-02"), err)
	}
	if len(rows) == 0 {
		r.log.Warn("report_no_data", zap.String("date", day.Format("2006-01-02")))
		return "", nil
	}

	sum, times, secs := summarize(rows)

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}

	date := day.Format("2006-01-02")
	var path string
	if len(times) >= 2 {
		path = filepath.Join(r.dir, fmt.Sprintf("uptime_report_%s.png", date))
		if err := r.renderChart(path, url, date, sum, times, secs); err != nil {
			return "", err
		}
	} else {
		path = filepath.Join(r.dir, fmt.Sprintf("uptime_report_%s.txt", date))
		if err := r.renderText(path, url, date, sum); err != nil {
			return "", err
		}
	}

	r.log.Info("report_generated",
		zap.String("path", path),
		zap.Float64("uptime_pct", sum.uptimePct),
		zap.Int("successful", sum.successful),
		zap.Int("total", sum.total),
	)
	return path, nil
}

func summarize(rows []domain.ProbeResult) (daySummary, []time.Time, []float64) {
	var sum daySummary
	var times []time.Time
	var secs []float64

	sum.total = len(rows)
	for _, row := range rows {
		if !row.Up {
			continue
		}
		sum.successful++
		if row.ResponseTime.Valid {
			times = append(times, row.Timestamp)
			secs = append(secs, row.ResponseTime.Float64)
			sum.avgSeconds += row.ResponseTime.Float64
			if row.ResponseTime.Float64 > sum.maxSeconds {
				sum.maxSeconds = row.ResponseTime.Float64
			}
		}
	}
	if len(secs) > 0 {
		sum.avgSeconds /= float64(len(secs))
	}
	if sum.total > 0 {
		sum.uptimePct = float64(sum.successful) / float64(sum.total) * 100
	}
	return sum, times, secs
}

func (r *Reporter) renderChart(path, url, date string, sum daySummary, times []time.Time, secs []float64) error {
	graph := chart.Chart{
		Title: fmt.Sprintf("%s %s: uptime %.1f%% (%d/%d), avg %.3fs, max %.3fs",
			url, date, sum.uptimePct, sum.successful, sum.total, sum.avgSeconds, sum.maxSeconds),
		XAxis: chart.XAxis{ValueFormatter: chart.TimeHourValueFormatter},
		YAxis: chart.YAxis{Name: "response time (s)"},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "response time",
				XValues: times,
				YValues: secs,
			},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report artifact: %w", err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering report chart: %w", err)
	}
	return nil
}

func (r *Reporter) renderText(path, url, date string, sum daySummary) error {
	body := fmt.Sprintf(
		"Uptime report for %s (%s)\n\nTotal pings: %d\nSuccessful: %d\nFailed: %d\nUptime: %.1f%%\n",
		url, date, sum.total, sum.successful, sum.total-sum.successful, sum.uptimePct)
	if sum.successful > 0 {
		body += fmt.Sprintf("Avg response: %.3fs\nMax response: %.3fs\n", sum.avgSeconds, sum.maxSeconds)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing report artifact: %w", err)
	}
	return nil
}
