package telegram

import "time"

// Verifier holds the process-wide verification settings. It is immutable
// after construction and safe for concurrent use.
type Verifier struct {
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

type Option func(*Verifier)

// WithMaxAge rejects init data whose auth_date is older than d. Zero
// disables the check.
func WithMaxAge(d time.Duration) Option {
	return func(v *Verifier) { v.maxAge = d }
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(botToken string, opts ...Option) (*Verifier, error) {
	if botToken == "" {
		return nil, ErrMissingBotToken
	}
	v := &Verifier{botToken: botToken, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) MaxAge() time.Duration { return v.maxAge }

func (v *Verifier) Verify(initData string) (AuthResult, error) {
	return VerifyInitData(initData, v.botToken, v.now(), v.maxAge)
}
