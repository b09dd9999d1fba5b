// Package locale picks the language of messages shown to external
// parties, who have no account and so no stored preference.
package locale

import (
	"net/http"

	"golang.org/x/text/language"
)

// Kind names a message shown to landlords.
type Kind string

const (
	LinkInvalid  Kind = "link_invalid"
	AccessDenied Kind = "access_denied"
	NotFound     Kind = "not_found"
	Unavailable  Kind = "unavailable"
)

// Supported languages; the first is the default.
var Supported = []language.Tag{language.BrazilianPortuguese, language.English}

var matcher = language.NewMatcher(Supported)

var messages = map[language.Tag]map[Kind]string{
	language.BrazilianPortuguese: {
		LinkInvalid:  "Este link é inválido ou expirou. Peça um novo link a quem o enviou.",
		AccessDenied: "Você não tem acesso a esta contestação.",
		NotFound:     "Contestação não encontrada.",
		Unavailable:  "Serviço temporariamente indisponível. Tente novamente em instantes.",
	},
	language.English: {
		LinkInvalid:  "This link is invalid or has expired. Ask the sender for a new one.",
		AccessDenied: "You do not have access to this dispute.",
		NotFound:     "Dispute not found.",
		Unavailable:  "Service temporarily unavailable. Please try again shortly.",
	},
}

// Match returns the supported language that best fits an Accept-Language
// header value.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, i, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[i]
}

// FromRequest matches on the request's Accept-Language header.
func FromRequest(r *http.Request) language.Tag {
	return Match(r.Header.Get("Accept-Language"))
}

// Message returns the text for k in tag, falling back to the default
// language for anything unknown.
func Message(tag language.Tag, k Kind) string {
	if m, ok := messages[tag][k]; ok {
		return m
	}
	return messages[Supported[0]][k]
}
