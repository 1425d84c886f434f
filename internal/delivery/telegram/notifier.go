package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts reset announcements to a Telegram chat. Delivery goes through
// a circuit breaker so an unreachable Bot API does not slow resets down.
type Notifier struct {
	sender  Sender
	chatID  int64
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewNotifier(sender Sender, chatID int64, logger *zap.Logger) *Notifier {
	st := gobreaker.Settings{
		Name:     "telegram",
		Interval: time.Minute,
		Timeout:  5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Notifier{
		sender:  sender,
		chatID:  chatID,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

// NewBot connects to the Bot API.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return bot, nil
}

func (n *Notifier) NotifyReset(ctx context.Context, result *entities.ResetResult, caller entities.CallerKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := newHTMLMessage(n.chatID, renderReset(result, caller))

	_, err := n.breaker.Execute(func() (any, error) {
		return n.sender.Send(msg)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			n.logger.Debug("telegram breaker open, skipping reset notification")
		}
		return fmt.Errorf("send reset notification: %w", err)
	}

	return nil
}

func renderReset(result *entities.ResetResult, caller entities.CallerKind) string {
	return fmt.Sprintf(
		"🔄 <b>Monthly reset completed</b>\n\n🗑️ Deleted: %d progress records\n⏰ %s\n👤 Trigger: %s\n\n🎯 Fresh start for everyone!",
		result.DeletedRecords,
		result.ResetTimestamp.UTC().Format(time.RFC3339),
		html.EscapeString(string(caller)),
	)
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}
