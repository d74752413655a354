package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const webAppDataKey = "WebAppData"

type User struct {
	ID                    int64  `json:"id"`
	IsBot                 bool   `json:"is_bot,omitempty"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name,omitempty"`
	Username              string `json:"username,omitempty"`
	Language              string `json:"language_code,omitempty"`
	IsPremium             bool   `json:"is_premium,omitempty"`
	AddedToAttachmentMenu bool   `json:"added_to_attachment_menu,omitempty"`
	AllowsWriteToPM       bool   `json:"allows_write_to_pm,omitempty"`
	PhotoURL              string `json:"photo_url,omitempty"`
}

// AuthResult is the outcome of a successful verification. AuthDate is zero
// when auth_date was absent and no freshness check was requested.
type AuthResult struct {
	User     User
	AuthDate time.Time

	QueryID      string
	ChatInstance string
	ChatType     string
	StartParam   string
	CanSendAfter time.Duration
}

// Field is one key=value pair of an init data string.
type Field struct {
	Key   string
	Value string
}

// VerifyInitData checks the signature of a Telegram Mini App init data
// string and extracts the user it was issued for. A maxAge <= 0 disables
// the auth_date freshness check.
//
// The returned error is always a *RejectionError wrapping ErrInvalidInitData.
func VerifyInitData(initData, botToken string, now time.Time, maxAge time.Duration) (res AuthResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = AuthResult{}, reject(ReasonVerificationFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	decoded, err := url.QueryUnescape(initData)
	if err != nil {
		return AuthResult{}, reject(ReasonVerificationFailed, "decode init data: "+err.Error())
	}

	fields, err := ParseFields(decoded)
	if err != nil {
		return AuthResult{}, err
	}

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Key] = f.Value
	}

	hash := values["hash"]
	if hash == "" {
		return AuthResult{}, reject(ReasonMissingHash, "missing hash")
	}

	expected := Sign(DataCheckString(fields), botToken)
	if !digestEqual([]byte(expected), []byte(hash)) {
		return AuthResult{}, reject(ReasonSignatureMismatch, "signature mismatch")
	}

	var authDate time.Time
	if raw, ok := values["auth_date"]; ok {
		if sec, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			authDate = time.Unix(sec, 0).UTC()
		}
	}
	if maxAge > 0 {
		if authDate.IsZero() {
			return AuthResult{}, reject(ReasonMissingAuthDate, "missing or invalid auth_date")
		}
		if now.Sub(authDate) > maxAge {
			return AuthResult{}, reject(ReasonExpired, "auth_date expired")
		}
	}

	userRaw, ok := values["user"]
	if !ok {
		return AuthResult{}, reject(ReasonMissingUser, "missing user")
	}
	user, err := parseUser(userRaw)
	if err != nil {
		return AuthResult{}, err
	}

	res = AuthResult{
		User:         user,
		AuthDate:     authDate,
		QueryID:      values["query_id"],
		ChatInstance: values["chat_instance"],
		ChatType:     values["chat_type"],
		StartParam:   values["start_param"],
	}
	if v := values["can_send_after"]; v != "" {
		if sec, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			res.CanSendAfter = time.Duration(sec) * time.Second
		}
	}
	return res, nil
}

// ParseFields splits an already decoded init data string into its fields.
// Every part must contain '=' and a non-empty key, and keys must be unique.
func ParseFields(decoded string) ([]Field, error) {
	parts := strings.Split(decoded, "&")
	fields := make([]Field, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, reject(ReasonMalformedField, "field without key=value")
		}
		if _, dup := seen[key]; dup {
			return nil, reject(ReasonMalformedField, "duplicate field "+strconv.Quote(key))
		}
		seen[key] = struct{}{}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return fields, nil
}

// DataCheckString renders fields, minus hash, sorted by key and joined by
// newlines.
func DataCheckString(fields []Field) string {
	sorted := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "hash" {
			continue
		}
		sorted = append(sorted, f)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	for i, f := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

// Sign returns the lowercase hex signature of a data check string for the
// given bot token.
func Sign(dataCheckString, botToken string) string {
	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	_, _ = secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	_, _ = mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignInitData builds a signed, URL-encoded init data string from fields.
// Values are taken verbatim; a hash entry in fields is ignored.
func SignInitData(fields []Field, botToken string) string {
	values := url.Values{}
	for _, f := range fields {
		if f.Key == "hash" {
			continue
		}
		values.Set(f.Key, f.Value)
	}
	values.Set("hash", Sign(DataCheckString(fields), botToken))
	return values.Encode()
}

// digestEqual compares a and b without branching on their content. Unlike
// subtle.ConstantTimeCompare it does not return early on a length mismatch:
// every byte of the longer input is visited.
func digestEqual(a, b []byte) bool {
	n := max(len(a), len(b))
	var diff byte
	for i := 0; i < n; i++ {
		diff |= byteAt(a, i) ^ byteAt(b, i)
	}
	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	return subtle.ConstantTimeByteEq(diff, 0)&sameLen == 1
}

func byteAt(b []byte, i int) byte {
	if i < len(b) {
		return b[i]
	}
	return 0
}

func parseUser(raw string) (User, error) {
	var probe struct {
		ID *json.Number `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return User{}, reject(ReasonMalformedUser, "invalid user json")
	}
	if probe.ID == nil {
		return User{}, reject(ReasonMalformedUser, "missing user.id")
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return User{}, reject(ReasonMalformedUser, "invalid user json")
	}
	if user.ID == 0 {
		return User{}, reject(ReasonMalformedUser, "zero user.id")
	}
	return user, nil
}
