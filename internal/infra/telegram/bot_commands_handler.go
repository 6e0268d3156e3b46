package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send("Hola " + c.Sender().FirstName + ". Use /help para ver los comandos disponibles.")
		}
		logCtx.Info("User is not the admin")
		return c.Send("Este bot solo atiende al administrador de certificados.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != adminTelegramID {
			return c.Send("No hay comandos disponibles para usted.")
		}
		var helpText strings.Builder
		helpText.WriteString("Comandos disponibles:\n\n")
		helpText.WriteString("`/certificados <dd-mm-aaaa> <dd-mm-aaaa>`\n - Descargar en Excel los certificados del rango de fechas.\n\n")
		helpText.WriteString("`/help`\n - Mostrar este mensaje.\n\n")
		helpText.WriteString("El primer día de cada mes recibirá los certificados del mes anterior.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
