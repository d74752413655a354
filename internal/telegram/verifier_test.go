package telegram

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewVerifier_RequiresBotToken(t *testing.T) {
	if _, err := NewVerifier(""); !errors.Is(err, ErrMissingBotToken) {
		t.Fatalf("expected ErrMissingBotToken, got %v", err)
	}
}

func TestVerifier_UsesInjectedClockAndMaxAge(t *testing.T) {
	now := testNow
	v, err := NewVerifier(testBotToken, WithMaxAge(time.Minute), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if v.MaxAge() != time.Minute {
		t.Fatalf("expected max age 1m, got %v", v.MaxAge())
	}

	initData := buildInitData(testBotToken, 8, testNow, nil)
	if _, err := v.Verify(initData); err != nil {
		t.Fatalf("expected fresh init data to verify, got %v", err)
	}

	now = testNow.Add(2 * time.Minute)
	_, err = v.Verify(initData)
	requireReason(t, err, ReasonExpired)
}

func TestVerifier_DefaultsToNoMaxAge(t *testing.T) {
	v, err := NewVerifier(testBotToken)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if _, err := v.Verify(buildInitData(testBotToken, 8, time.Unix(1, 0), nil)); err != nil {
		t.Fatalf("expected old init data to verify without max age, got %v", err)
	}
}

func TestContextWithAuth(t *testing.T) {
	if _, ok := AuthFromContext(context.Background()); ok {
		t.Fatal("expected no auth in empty context")
	}

	ctx := ContextWithAuth(context.Background(), AuthResult{User: User{ID: 42, FirstName: "A"}})
	a, ok := AuthFromContext(ctx)
	if !ok || a.User.FirstName != "A" {
		t.Fatalf("unexpected auth %+v (ok=%v)", a, ok)
	}
	if a.User.ID != 42 {
		t.Fatalf("expected user id 42, got %d", a.User.ID)
	}
}
