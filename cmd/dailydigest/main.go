package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"DailyDigest/internal/app"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/logging"
)

func main() {
	track := flag.String("track", "default", "track to collect")
	date := flag.String("date", "", "run date as YYYY-MM-DD (default: today)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	now, err := resolveNow(*date, cfg.Run.Location())
	if err != nil {
		logger.Error("invalid date", "date", *date, "error", err)
		os.Exit(2)
	}

	application := app.New(cfg, logger)

	report, err := application.Run(context.Background(), *track, now)
	if err != nil {
		logger.Error("run aborted", "track", *track, "error", err)
		os.Exit(2)
	}

	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			logger.Warn("source failed", "source", outcome.Source, "error", outcome.Err)
			continue
		}
		logger.Info("source done", "source", outcome.Source,
			"fetched", outcome.Fetched, "written", outcome.Written)
	}

	status := report.Status()
	logger.Info("run finished", "track", *track, "status", string(status))

	if status == domain.StatusFailure {
		os.Exit(1)
	}
}

// resolveNow reads "now" once for the run. An explicit date re-runs that day:
// the reference instant becomes the end of the day so the lookback window
// covers it fully.
func resolveNow(date string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Now().In(loc), nil
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return day.Add(24*time.Hour - time.Second), nil
}
