package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certificados_dashboard/internal/domain/certificate"
	domainTelegram "certificados_dashboard/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// ReportExporter is the part of ReportService delivery needs.
type ReportExporter interface {
	Export(ctx context.Context, dr certificate.DateRange) (*certificate.ExportArtifact, error)
}

// DeliveryService pushes periodic exports to the admin chat.
type DeliveryService struct {
	reports   ReportExporter
	client    domainTelegram.Client
	recipient int64
	logger    *logrus.Entry
	now       func() time.Time
}

func NewDeliveryService(reports ReportExporter, client domainTelegram.Client, recipient int64, logger *logrus.Entry) *DeliveryService {
	return &DeliveryService{
		reports:   reports,
		client:    client,
		recipient: recipient,
		logger:    logger,
		now:       time.Now,
	}
}

// SendPreviousMonth exports last calendar month and sends it to the
// recipient. An empty month is reported with a text message instead.
func (s *DeliveryService) SendPreviousMonth(ctx context.Context) error {
	dr := certificate.PreviousMonth(s.now())
	logCtx := s.logger.WithFields(logrus.Fields{"range": dr.String(), "recipient": s.recipient})

	artifact, err := s.reports.Export(ctx, dr)
	if errors.Is(err, ErrNoRecords) {
		logCtx.Info("No certificates last month; sending notice")
		msg := fmt.Sprintf("No se encontraron certificados entre %s y %s.",
			dr.Start.Format(certificate.DisplayLayout), dr.End.Format(certificate.DisplayLayout))
		if err := s.client.SendMessage(s.recipient, msg); err != nil {
			return fmt.Errorf("failed to send empty-month notice: %w", err)
		}
		return nil
	}
	if errors.Is(err, certificate.ErrNoConnection) {
		logCtx.WithError(err).Warn("Database unavailable; monthly report not sent")
		return fmt.Errorf("monthly report skipped: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to export monthly report: %w", err)
	}

	caption := fmt.Sprintf("Certificados %s a %s (%d registros)",
		dr.Start.Format(certificate.DisplayLayout), dr.End.Format(certificate.DisplayLayout), artifact.Rows)
	if err := s.client.SendDocument(s.recipient, artifact, caption); err != nil {
		return fmt.Errorf("failed to send monthly report: %w", err)
	}
	logCtx.WithField("file", artifact.FileName).Info("Monthly report delivered")
	return nil
}
