package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrDelivery is matched by every error returned from Notify. It marks a
// failure to reach the user, as opposed to a failure to authenticate them.
var ErrDelivery = errors.New("confirmation delivery failed")

// DeliveryError describes a failed sendMessage call. Permanent is set when
// Telegram rejected the message itself (e.g. the user blocked the bot), so
// repeating the call would not help.
type DeliveryError struct {
	ChatID    int64
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("send message to chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDelivery, e.Err} }

// IsPermanent reports whether err is a DeliveryError Telegram refused.
func IsPermanent(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Permanent
}

// TelegramNotifier sends plain text messages through the Bot API. Each call
// is a single attempt bounded by the HTTP client timeout.
type TelegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier connects to the Bot API at apiEndpoint (a
// "…/bot%s/%s" format string, empty for the public API) and checks the token
// with getMe. An unreachable Bot API is an error, so the server does not
// start without one.
func NewTelegramNotifier(botToken, apiEndpoint string, timeout time.Duration) (*TelegramNotifier, error) {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, apiEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	bot.Debug = false
	return &TelegramNotifier{bot: bot}, nil
}

// BotUsername is the username getMe reported for the token.
func (n *TelegramNotifier) BotUsername() string {
	return n.bot.Self.UserName
}

func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		var apiErr *tgbotapi.Error
		permanent := errors.As(err, &apiErr) && apiErr.Code != http.StatusTooManyRequests && apiErr.Code < 500
		return &DeliveryError{ChatID: chatID, Permanent: permanent, Err: err}
	}
	return nil
}
