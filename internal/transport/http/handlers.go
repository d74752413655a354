package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"miniapp-tma-backend/internal/app/submission"
	"miniapp-tma-backend/internal/notify"
	"miniapp-tma-backend/internal/telegram"
)

const maxBodyBytes = 16 << 10

// Submitter is satisfied by *submission.Service.
type Submitter interface {
	Submit(ctx context.Context, user telegram.User, in submission.SubmitInput) (submission.SubmitResult, error)
}

type Handlers struct {
	Submissions Submitter
	Log         *zap.Logger
}

type submitResponse struct {
	Status string `json:"status"`
}

// HandleSubmit accepts {"url": "..."} from an authenticated user and sends
// them the confirmation message.
func (h Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	auth, ok := telegram.AuthFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, telegram.ErrInvalidInitData.Error())
		return
	}

	var in submission.SubmitInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Submissions.Submit(r.Context(), auth.User, in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, submitResponse{Status: res.Status})
	case errors.Is(err, submission.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid url")
	case errors.Is(err, notify.ErrDelivery):
		writeError(w, http.StatusBadGateway, "failed to deliver confirmation")
	default:
		loggerFrom(r.Context(), h.Log).Error("submit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type meResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	Language  string `json:"languageCode,omitempty"`
	IsPremium bool   `json:"isPremium"`
	PhotoURL  string `json:"photoUrl,omitempty"`
	AuthDate  int64  `json:"authDate,omitempty"`
}

// HandleMe returns the identity the request was authenticated as.
func (h Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	auth, ok := telegram.AuthFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, telegram.ErrInvalidInitData.Error())
		return
	}

	resp := meResponse{
		ID:        auth.User.ID,
		FirstName: auth.User.FirstName,
		LastName:  auth.User.LastName,
		Username:  auth.User.Username,
		Language:  auth.User.Language,
		IsPremium: auth.User.IsPremium,
		PhotoURL:  auth.User.PhotoURL,
	}
	if !auth.AuthDate.IsZero() {
		resp.AuthDate = auth.AuthDate.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
