package notify

import (
	"errors"
	"strings"

	"escape-planner/internal/shared/util"
)

// ErrInvalidContact means the address failed the minimal shape check.
var ErrInvalidContact = errors.New("invalid contact address")

const maxNameLength = 120

// Contact is a lead's address and optional display name.
type Contact struct {
	Email string
	Name  string
}

// ParseContact applies the minimal shape check: an '@' followed later by a '.'.
// It is not RFC 5322 validation.
func ParseContact(email, name string) (Contact, error) {
	email = strings.TrimSpace(email)
	if !looksLikeEmail(email) {
		return Contact{}, ErrInvalidContact
	}
	name = util.Truncate(strings.TrimSpace(name), maxNameLength)
	return Contact{Email: email, Name: name}, nil
}

func looksLikeEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 {
		return false
	}
	dot := strings.LastIndex(s[at+1:], ".")
	return dot > 0 && at+1+dot < len(s)-1
}
