package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certificados_dashboard/internal/app"
	"certificados_dashboard/internal/domain/certificate"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const commandTimeout = 2 * time.Minute

const (
	usageCertificados = "Formato: /certificados <dd-mm-aaaa> <dd-mm-aaaa>"
	msgUnavailable    = "No hay conexión con la base de datos. Intente más tarde."
)

// RegisterReportHandlers registers the /certificados export command.
// Only the configured admin may use it.
func RegisterReportHandlers(b *telebot.Bot, reports app.ReportExporter, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/certificados", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/certificados",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: No tiene permisos para ejecutar este comando.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		reply := certificadosReply(ctx, reports, c.Args(), handlerLogger)
		return c.Send(reply)
	})
}

// certificadosReply returns either a *telebot.Document or a text message.
func certificadosReply(ctx context.Context, reports app.ReportExporter, args []string, logger *logrus.Entry) any {
	if len(args) != 2 {
		return usageCertificados
	}

	dr, err := certificate.ParseDateRange(certificate.DisplayLayout, args[0], args[1])
	if err != nil {
		return "Error: fechas inválidas. " + usageCertificados
	}
	if err := dr.Validate(); err != nil {
		return "Error: La fecha 'Desde' no puede ser posterior a la fecha 'Hasta'."
	}

	artifact, err := reports.Export(ctx, dr)
	switch {
	case errors.Is(err, app.ErrNoRecords):
		return "No se encontraron registros para el rango de fechas seleccionado."
	case errors.Is(err, certificate.ErrNoConnection):
		logger.WithError(err).Warn("Database unavailable for export")
		return msgUnavailable
	case err != nil:
		logger.WithError(err).Error("Failed to export certificates")
		return fmt.Sprintf("Ocurrió un error al generar el archivo: %s", err.Error())
	}

	logger.WithFields(logrus.Fields{"file": artifact.FileName, "rows": artifact.Rows}).Info("Sending export")
	doc := documentFor(artifact)
	doc.Caption = fmt.Sprintf("%d registros", artifact.Rows)
	return doc
}
