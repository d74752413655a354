package httptransport

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"miniapp-tma-backend/internal/metrics"
	"miniapp-tma-backend/internal/telegram"
)

const initDataHeader = "X-Telegram-Init-Data"

// TelegramAuthMiddleware authenticates every request from its Telegram
// Mini App init data. Clients only ever see one generic message; the
// rejection reason goes to the log and the metrics.
type TelegramAuthMiddleware struct {
	Verifier *telegram.Verifier
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func (m TelegramAuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Verifier == nil {
			writeError(w, http.StatusServiceUnavailable, "authentication is not configured")
			return
		}

		initData := initDataFromRequest(r)
		if initData == "" {
			m.Metrics.InitDataVerifications.WithLabelValues("missing_header").Inc()
			writeError(w, http.StatusUnauthorized, telegram.ErrInvalidInitData.Error())
			return
		}

		auth, err := m.Verifier.Verify(initData)
		if err != nil {
			reason := telegram.ReasonOf(err)
			m.Metrics.InitDataVerifications.WithLabelValues(string(reason)).Inc()
			loggerFrom(r.Context(), m.Log).Warn("init data rejected",
				zap.String("reason", string(reason)),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, telegram.ErrInvalidInitData.Error())
			return
		}

		m.Metrics.InitDataVerifications.WithLabelValues("verified").Inc()
		ctx := telegram.ContextWithAuth(r.Context(), auth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// initDataFromRequest reads X-Telegram-Init-Data, falling back to
// "Authorization: tma <init data>".
func initDataFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(initDataHeader)); v != "" {
		return v
	}
	scheme, rest, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if ok && strings.EqualFold(scheme, "tma") {
		return strings.TrimSpace(rest)
	}
	return ""
}
