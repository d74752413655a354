package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:TEST"

type sentMessage struct {
	ChatID string
	Text   string
}

// fakeBotAPI serves getMe and answers sendMessage with sendStatus/sendBody.
type fakeBotAPI struct {
	mu         sync.Mutex
	sent       []sentMessage
	sendStatus int
	sendBody   map[string]any
}

func (f *fakeBotAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/bot"+testToken+"/getMe"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"id": 1, "is_bot": true, "first_name": "Relay", "username": "relay_bot"},
			})
		case strings.HasSuffix(r.URL.Path, "/bot"+testToken+"/sendMessage"):
			require.NoError(t, r.ParseForm())
			f.mu.Lock()
			f.sent = append(f.sent, sentMessage{ChatID: r.PostForm.Get("chat_id"), Text: r.PostForm.Get("text")})
			status, body := f.sendStatus, f.sendBody
			f.mu.Unlock()
			if status == 0 {
				status = http.StatusOK
			}
			if body == nil {
				body = map[string]any{
					"ok":     true,
					"result": map[string]any{"message_id": 7, "date": 0, "chat": map[string]any{"id": 42, "type": "private"}},
				}
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 404, "description": "Not Found"})
		}
	})
}

func (f *fakeBotAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newTestNotifier(t *testing.T, fake *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier(testToken, srv.URL+"/bot%s/%s", 5*time.Second)
	require.NoError(t, err)
	return n
}

func TestNewTelegramNotifier_ChecksToken(t *testing.T) {
	n := newTestNotifier(t, &fakeBotAPI{})
	assert.Equal(t, "relay_bot", n.BotUsername())
}

func TestNewTelegramNotifier_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
	}))
	t.Cleanup(srv.Close)

	_, err := NewTelegramNotifier("bad", srv.URL+"/bot%s/%s", time.Second)
	require.Error(t, err)
}

func TestNewTelegramNotifier_UnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/bot%s/%s"
	srv.Close()

	_, err := NewTelegramNotifier(testToken, endpoint, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect bot api")
}

func TestNotify_SendsToChat(t *testing.T) {
	fake := &fakeBotAPI{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.Notify(context.Background(), 42, "link received"))

	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "42", sent[0].ChatID)
	assert.Equal(t, "link received", sent[0].Text)
}

func TestNotify_TelegramRejectionIsPermanent(t *testing.T) {
	fake := &fakeBotAPI{
		sendStatus: http.StatusForbidden,
		sendBody:   map[string]any{"ok": false, "error_code": 403, "description": "Forbidden: bot was blocked by the user"},
	}
	n := newTestNotifier(t, fake)

	err := n.Notify(context.Background(), 42, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.True(t, IsPermanent(err))

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, int64(42), de.ChatID)
}

func TestNotify_RateLimitIsNotPermanent(t *testing.T) {
	fake := &fakeBotAPI{
		sendStatus: http.StatusTooManyRequests,
		sendBody: map[string]any{
			"ok": false, "error_code": 429, "description": "Too Many Requests: retry after 5",
			"parameters": map[string]any{"retry_after": 5},
		},
	}
	n := newTestNotifier(t, fake)

	err := n.Notify(context.Background(), 42, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.False(t, IsPermanent(err))
}

func TestNotify_CanceledContext(t *testing.T) {
	fake := &fakeBotAPI{}
	n := newTestNotifier(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Notify(ctx, 42, "hi")
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, fake.messages())
}
