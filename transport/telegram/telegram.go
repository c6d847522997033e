package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/pkg/safego"
)

type Config struct {
	Token       string `json:"token" yaml:"token" mapstructure:"token"`
	Debug       bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
	PollTimeout int    `json:"pollTimeout" yaml:"poll-timeout" mapstructure:"poll-timeout"`
}

// Handler receives the two inbound message shapes the transport produces.
type Handler interface {
	HandleText(ctx context.Context, chatID int64, text string)
	HandleCommand(ctx context.Context, chatID int64, command, args string)
}

// Bot adapts the Telegram long-polling API to the assistant core.
type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
}

func NewBot(cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 30
	}
	logs.Infof("[telegram] authorized as @%s", api.Self.UserName)
	return &Bot{api: api, pollTimeout: timeout}, nil
}

// Send delivers Markdown-formatted text to a chat.
func (b *Bot) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// Poll consumes updates until ctx is cancelled. Each update is dispatched
// on its own goroutine; per-chat ordering is the handler's concern.
func (b *Bot) Poll(ctx context.Context, handler Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			message := update.Message
			chatID := message.Chat.ID
			if message.IsCommand() {
				command := message.Command()
				args := message.CommandArguments()
				safego.Go(func() {
					handler.HandleCommand(ctx, chatID, command, args)
				})
				continue
			}
			text := message.Text
			safego.Go(func() {
				handler.HandleText(ctx, chatID, text)
			})
		}
	}
}
