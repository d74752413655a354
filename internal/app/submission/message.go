package submission

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"miniapp-tma-backend/internal/telegram"
)

type confirmationTemplate struct {
	greeting  string // %s is the user's name
	anonymous string
	body      string // %s is the submitted URL
}

// supportedLanguages is ordered by preference; the first entry is the
// fallback for unknown or empty language codes.
var supportedLanguages = []language.Tag{
	language.English,
	language.Russian,
	language.Spanish,
	language.German,
}

var templates = []confirmationTemplate{
	{greeting: "Hi %s!", anonymous: "Hi!", body: "We received your link:\n%s"},
	{greeting: "Привет, %s!", anonymous: "Привет!", body: "Мы получили вашу ссылку:\n%s"},
	{greeting: "¡Hola, %s!", anonymous: "¡Hola!", body: "Hemos recibido tu enlace:\n%s"},
	{greeting: "Hallo %s!", anonymous: "Hallo!", body: "Wir haben deinen Link erhalten:\n%s"},
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// ConfirmationText renders the message sent back to user after a link was
// accepted, in the user's Telegram client language when supported.
func ConfirmationText(user telegram.User, link string) string {
	_, idx, _ := languageMatcher.Match(language.Make(user.Language))
	tag, tpl := supportedLanguages[idx], templates[idx]

	greeting := tpl.anonymous
	if name := displayName(user, tag); name != "" {
		greeting = fmt.Sprintf(tpl.greeting, name)
	}
	return greeting + "\n" + fmt.Sprintf(tpl.body, link)
}

func displayName(user telegram.User, tag language.Tag) string {
	if name := strings.TrimSpace(user.FirstName); name != "" {
		// Only fix names typed entirely in lower case; "McDonald" stays.
		if strings.ToLower(name) == name {
			name = cases.Title(tag).String(name)
		}
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return ""
}
