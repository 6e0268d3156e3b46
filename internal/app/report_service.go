package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certificados_dashboard/internal/domain/certificate"
	"certificados_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// ErrNoRecords is returned by Export when the range holds no rows.
var ErrNoRecords = errors.New("no records found for the selected date range")

// Exporter turns a ResultSet into spreadsheet bytes.
type Exporter interface {
	ToSpreadsheet(rs certificate.ResultSet) ([]byte, error)
}

// ReportService fetches certificate records for date ranges and exports them.
// Returned ResultSets may be shared between callers and must not be modified.
type ReportService struct {
	repo     certificate.Repository
	exporter Exporter
	cache    *ResultCache
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

func NewReportService(
	repo certificate.Repository,
	exporter Exporter,
	cache *ResultCache,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *ReportService {
	return &ReportService{
		repo:     repo,
		exporter: exporter,
		cache:    cache,
		metrics:  m,
		logger:   logger,
	}
}

// Report validates dr and, only if it is well ordered, fetches its records.
func (s *ReportService) Report(ctx context.Context, dr certificate.DateRange) (certificate.ResultSet, error) {
	if err := dr.Validate(); err != nil {
		s.logger.WithField("range", dr.String()).Warn("Rejected date range; no query issued")
		return certificate.ResultSet{}, err
	}
	return s.FetchData(ctx, dr.Start, dr.End)
}

// FetchData returns the records whose fecha falls in [start, end]. Ordering
// of start and end is the caller's responsibility. When no database
// connection exists it returns an empty, Unavailable set and no error.
// Successful results are cached per (start, end) pair.
func (s *ReportService) FetchData(ctx context.Context, start, end time.Time) (certificate.ResultSet, error) {
	dr := certificate.NewDateRange(start, end)
	logCtx := s.logger.WithField("range", dr.String())

	if rs, ok := s.cache.Get(dr); ok {
		s.metrics.Fetches.WithLabelValues(metrics.OutcomeCacheHit).Inc()
		logCtx.Debug("Serving certificates from cache")
		return rs, nil
	}

	began := time.Now()
	rs, err := s.repo.FindByDateRange(ctx, dr)
	s.metrics.QueryDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		if errors.Is(err, certificate.ErrNoConnection) {
			s.metrics.Fetches.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			logCtx.WithError(err).Warn("No database connection; returning empty result")
			return certificate.ResultSet{Unavailable: true}, nil
		}
		s.metrics.Fetches.WithLabelValues(metrics.OutcomeError).Inc()
		logCtx.WithError(err).Error("Certificate query failed")
		return certificate.ResultSet{}, err
	}

	s.cache.Put(dr, rs)
	s.metrics.Fetches.WithLabelValues(metrics.OutcomeQueried).Inc()
	s.metrics.RowsReturned.Add(float64(rs.Len()))
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	logCtx.WithField("rows", rs.Len()).Info("Fetched certificates")
	return rs, nil
}

// Export validates dr, fetches its records and renders them as a spreadsheet.
// It returns ErrNoRecords when the range holds no rows and an error wrapping
// certificate.ErrNoConnection when the database is unavailable.
func (s *ReportService) Export(ctx context.Context, dr certificate.DateRange) (*certificate.ExportArtifact, error) {
	rs, err := s.Report(ctx, dr)
	if err != nil {
		return nil, err
	}
	if rs.Unavailable {
		return nil, fmt.Errorf("nothing to export for %s: %w", dr, certificate.ErrNoConnection)
	}
	if rs.Empty() {
		return nil, ErrNoRecords
	}

	data, err := s.exporter.ToSpreadsheet(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to build spreadsheet: %w", err)
	}
	s.metrics.Exports.Inc()

	artifact := &certificate.ExportArtifact{
		FileName: dr.ExportFileName(),
		MIMEType: certificate.ExportMIMEType,
		Data:     data,
		Rows:     rs.Len(),
	}
	s.logger.WithFields(logrus.Fields{
		"range": dr.String(),
		"file":  artifact.FileName,
		"bytes": len(data),
	}).Info("Spreadsheet exported")
	return artifact, nil
}

// PurgeCache drops expired cache entries.
func (s *ReportService) PurgeCache() int {
	removed := s.cache.PurgeExpired()
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	return removed
}
