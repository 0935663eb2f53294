package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/engine"
)

// Bot adapts Telegram long polling to the conversation engine and implements
// engine.Messenger for outbound delivery.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	log    zerolog.Logger
}

// NewBot connects to the Telegram API.
func NewBot(token string, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{
		api: api,
		log: log.With().Str("component", "telegram").Logger(),
	}, nil
}

// SetEngine wires the conversation engine. The engine needs the bot as its
// Messenger, so wiring happens after construction.
func (b *Bot) SetEngine(e *engine.Engine) {
	b.engine = e
}

// Username returns the authenticated bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is canceled. Each update is handled
// on its own goroutine; the engine serializes messages per conversation.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			go b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	userID := m.From.ID
	username := m.From.UserName
	if username == "" {
		username = m.From.FirstName
	}

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			b.engine.HandleStart(ctx, chatID, userID, username)
		case "image":
			b.engine.HandleImage(ctx, chatID, userID, username)
		case "cancel":
			b.engine.HandleCancel(ctx, chatID)
		case "gallery":
			b.engine.HandleGallery(ctx, chatID, userID)
		default:
			b.log.Debug().Str("command", m.Command()).Msg("unknown command ignored")
		}
		return
	}

	b.engine.HandleText(ctx, chatID, m.Text)
}

// SendText sends a plain text message.
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// SendKeyboard sends text with a one-time reply keyboard.
func (b *Bot) SendKeyboard(chatID int64, text string, rows [][]string) error {
	keyboardRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		keyboardRows = append(keyboardRows, buttons)
	}

	keyboard := tgbotapi.NewReplyKeyboard(keyboardRows...)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

// SendTextRemoveKeyboard sends text and clears any open reply keyboard.
func (b *Bot) SendTextRemoveKeyboard(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

// SendPhoto uploads the artifact file to the chat.
func (b *Bot) SendPhoto(chatID int64, path string) error {
	_, err := b.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path)))
	return err
}
