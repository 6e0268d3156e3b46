package telegram

import "certificados_dashboard/internal/domain/certificate"

// Client defines an interface for sending messages via a Telegram bot.
type Client interface {
	SendMessage(recipientChatID int64, text string) error
	SendDocument(recipientChatID int64, artifact *certificate.ExportArtifact, caption string) error
}
