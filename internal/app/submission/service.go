package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"miniapp-tma-backend/internal/metrics"
	"miniapp-tma-backend/internal/notify"
	"miniapp-tma-backend/internal/telegram"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

type SubmitInput struct {
	URL string `json:"url" validate:"required,max=2048,http_url"`
}

type SubmitResult struct {
	ChatID int64
	Status string
}

const StatusSent = "sent"

// ErrInvalidURL is returned when the submitted URL fails validation.
var ErrInvalidURL = errors.New("invalid url")

// Notifier delivers a text message to a Telegram chat.
// *notify.TelegramNotifier implements it; tests use a stub.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type Service struct {
	notifier Notifier
	validate *validator.Validate
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewService(notifier Notifier, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		log:      log,
	}
}

// Submit validates the link and sends the confirmation to the user who
// submitted it. The chat id is always the authenticated user's id.
func (s *Service) Submit(ctx context.Context, user telegram.User, in SubmitInput) (SubmitResult, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := s.validate.Struct(in); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	text := ConfirmationText(user, in.URL)
	if err := s.notifier.Notify(ctx, user.ID, text); err != nil {
		s.metrics.Notifications.WithLabelValues(notificationResult(err)).Inc()
		s.log.Error("confirmation not delivered",
			zap.Int64("chat_id", user.ID),
			zap.Bool("permanent", notify.IsPermanent(err)),
			zap.Error(err),
		)
		if !errors.Is(err, notify.ErrDelivery) {
			err = &notify.DeliveryError{ChatID: user.ID, Err: err}
		}
		return SubmitResult{}, err
	}

	s.metrics.Notifications.WithLabelValues("sent").Inc()
	s.log.Info("confirmation sent", zap.Int64("chat_id", user.ID))
	return SubmitResult{ChatID: user.ID, Status: StatusSent}, nil
}

func notificationResult(err error) string {
	if notify.IsPermanent(err) {
		return "rejected"
	}
	return "failed"
}
