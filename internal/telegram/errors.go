package telegram

import (
	"errors"
)

// Reason identifies which check rejected an init data string. The values
// are stable and safe to use as metric labels.
type Reason string

const (
	ReasonMalformedField     Reason = "malformed_field"
	ReasonMissingHash        Reason = "missing_hash"
	ReasonSignatureMismatch  Reason = "signature_mismatch"
	ReasonMissingAuthDate    Reason = "missing_auth_date"
	ReasonExpired            Reason = "expired"
	ReasonMissingUser        Reason = "missing_user"
	ReasonMalformedUser      Reason = "malformed_user"
	ReasonVerificationFailed Reason = "verification_failed"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrMissingBotToken = errors.New("telegram bot token is not configured")
)

// RejectionError is returned for every init data that fails verification.
// Detail is meant for logs only; it must not be shown to clients.
type RejectionError struct {
	Reason Reason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return ErrInvalidInitData.Error() + ": " + string(e.Reason)
	}
	return ErrInvalidInitData.Error() + ": " + e.Detail
}

func (e *RejectionError) Unwrap() error { return ErrInvalidInitData }

// ReasonOf extracts the rejection reason from err. Errors that did not come
// from verification report ReasonVerificationFailed.
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ReasonVerificationFailed
}

func reject(reason Reason, detail string) error {
	return &RejectionError{Reason: reason, Detail: detail}
}
