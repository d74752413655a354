package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"miniapp-tma-backend/internal/telegram"
)

func TestConfirmationText_Languages(t *testing.T) {
	const link = "https://example.com/a"
	cases := []struct {
		lang string
		want string
	}{
		{"en", "Hi Anna!\nWe received your link:\n" + link},
		{"", "Hi Anna!\nWe received your link:\n" + link},
		{"pt-br", "Hi Anna!\nWe received your link:\n" + link},
		{"en-GB", "Hi Anna!\nWe received your link:\n" + link},
		{"ru", "Привет, Anna!\nМы получили вашу ссылку:\n" + link},
		{"es-MX", "¡Hola, Anna!\nHemos recibido tu enlace:\n" + link},
		{"de", "Hallo Anna!\nWir haben deinen Link erhalten:\n" + link},
	}
	for _, tc := range cases {
		got := ConfirmationText(telegram.User{ID: 1, FirstName: "Anna", Language: tc.lang}, link)
		assert.Equal(t, tc.want, got, "language %q", tc.lang)
	}
}

func TestConfirmationText_Names(t *testing.T) {
	const link = "https://example.com"

	assert.Equal(t, "Hi Anna!\nWe received your link:\n"+link,
		ConfirmationText(telegram.User{FirstName: "anna"}, link))
	assert.Equal(t, "Hi McDonald!\nWe received your link:\n"+link,
		ConfirmationText(telegram.User{FirstName: "McDonald"}, link))
	assert.Equal(t, "Hi @anna_k!\nWe received your link:\n"+link,
		ConfirmationText(telegram.User{FirstName: "  ", Username: "anna_k"}, link))
	assert.Equal(t, "Hi!\nWe received your link:\n"+link,
		ConfirmationText(telegram.User{}, link))
}
