package telegram

import (
	"bytes"

	"certificados_dashboard/internal/domain/certificate"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string) error {
	_, err := tba.bot.Send(&telebot.User{ID: recipientChatID}, text)
	return err
}

// SendDocument uploads an exported spreadsheet to the recipient.
func (tba *TelebotAdapter) SendDocument(recipientChatID int64, artifact *certificate.ExportArtifact, caption string) error {
	doc := documentFor(artifact)
	doc.Caption = caption
	_, err := tba.bot.Send(&telebot.User{ID: recipientChatID}, doc)
	return err
}

func documentFor(artifact *certificate.ExportArtifact) *telebot.Document {
	return &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader(artifact.Data)),
		FileName: artifact.FileName,
		MIME:     artifact.MIMEType,
	}
}
