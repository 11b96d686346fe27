package infrastructure

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ContactRequestKeyboard asks a Telegram user to share their phone number
func ContactRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Compartilhar telefone"),
		),
	)
}

func RemoveKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}
