package telegram

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/logging"
)

// TelegramAdapter bridges Telegram long polling onto the channel
// interface. The chat ID doubles as the conversation key.
type TelegramAdapter struct {
	bot      *tgbotapi.BotAPI
	token    string
	incoming chan *channel.Message
	logger   *slog.Logger
}

func NewTelegramAdapter(token string) *TelegramAdapter {
	return &TelegramAdapter{
		token:    token,
		incoming: make(chan *channel.Message, 100),
		logger:   logging.WithComponent("channel.telegram"),
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) IsEnabled() bool {
	return t.token != ""
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return err
	}
	t.bot = bot
	t.logger.Info("telegram bot connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil {
					continue
				}
				t.incoming <- t.translate(update.Message)
			}
		}
	}()
	return nil
}

// translate maps one Telegram message onto the channel message shape.
// A shared location becomes a location-kind message with empty text.
func (t *TelegramAdapter) translate(m *tgbotapi.Message) *channel.Message {
	msg := &channel.Message{
		ID:              strconv.Itoa(m.MessageID),
		Channel:         "telegram",
		ConversationKey: strconv.FormatInt(m.Chat.ID, 10),
		Kind:            channel.KindText,
		Text:            m.Text,
		Metadata:        map[string]string{"from_id": strconv.FormatInt(m.From.ID, 10)},
		Timestamp:       int64(m.Date),
	}
	switch {
	case m.Location != nil:
		msg.Kind = channel.KindLocation
		msg.Location = &channel.Location{
			Lat: m.Location.Latitude,
			Lon: m.Location.Longitude,
		}
	case len(m.Photo) > 0:
		msg.Kind = channel.KindImage
		msg.MediaRef = m.Photo[len(m.Photo)-1].FileID
		msg.Text = m.Caption
	case m.Voice != nil:
		msg.Kind = channel.KindAudio
		msg.MediaRef = m.Voice.FileID
	}
	return msg
}

func (t *TelegramAdapter) Stop() error {
	close(t.incoming)
	return nil
}

// SendMessage delivers a reply. A location request carries a one-tap
// "share location" reply keyboard; plain replies remove it again.
func (t *TelegramAdapter) SendMessage(conversationKey string, resp *channel.Response) error {
	chatID, err := strconv.ParseInt(conversationKey, 10, 64)
	if err != nil {
		return err
	}

	reply := tgbotapi.NewMessage(chatID, resp.Content)
	if resp.Kind == channel.ResponseLocationRequest {
		btn := tgbotapi.NewKeyboardButtonLocation("📍 Share my location")
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(btn))
		kb.OneTimeKeyboard = true
		reply.ReplyMarkup = kb
	} else {
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	_, err = t.bot.Send(reply)
	return err
}

func (t *TelegramAdapter) Incoming() <-chan *channel.Message {
	return t.incoming
}
