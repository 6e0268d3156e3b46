package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CachePurger drops expired cached results.
type CachePurger interface {
	PurgeCache() int
}

// MonthlyReporter delivers the previous month's export.
type MonthlyReporter interface {
	SendPreviousMonth(ctx context.Context) error
}

type ReportScheduler struct {
	cronEngine        *cron.Cron
	purger            CachePurger
	reporter          MonthlyReporter // nil when Telegram is disabled
	logger            *logrus.Entry
	cronSpecPurge     string
	cronSpecMonthly   string
	monthlyJobTimeout time.Duration
}

func NewReportScheduler(
	purger CachePurger,
	reporter MonthlyReporter,
	logger *logrus.Entry,
	cronSpecPurge string, // e.g., "*/10 * * * *" (every 10 minutes)
	cronSpecMonthly string, // e.g., "0 8 1 * *" (8:00 AM on the 1st)
) *ReportScheduler {
	return &ReportScheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		purger:            purger,
		reporter:          reporter,
		logger:            logger,
		cronSpecPurge:     cronSpecPurge,
		cronSpecMonthly:   cronSpecMonthly,
		monthlyJobTimeout: 5 * time.Minute,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *ReportScheduler) Start() error {
	s.logger.Info("Starting report scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecPurge, s.purgeCache); err != nil {
		return fmt.Errorf("could not add cache purge cron job: %w", err)
	}

	if s.reporter != nil {
		if _, err := s.cronEngine.AddFunc(s.cronSpecMonthly, s.sendMonthlyReport); err != nil {
			return fmt.Errorf("could not add monthly report cron job: %w", err)
		}
	} else {
		s.logger.Info("Monthly report delivery disabled; no Telegram client configured.")
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Report scheduler started with jobs.")
	return nil
}

func (s *ReportScheduler) purgeCache() {
	removed := s.purger.PurgeCache()
	s.logger.WithField("removed", removed).Debug("Cache purge job finished")
}

func (s *ReportScheduler) sendMonthlyReport() {
	s.logger.Info("Cron job triggered for monthly report delivery.")
	ctx, cancel := context.WithTimeout(context.Background(), s.monthlyJobTimeout)
	defer cancel()
	if err := s.reporter.SendPreviousMonth(ctx); err != nil {
		s.logger.WithError(err).Error("Error during monthly report delivery")
	}
}

func (s *ReportScheduler) Stop() {
	s.logger.Info("Stopping report scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Report scheduler gracefully stopped.")
}
