package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

// NotificationPrefs live only for the current session and are never persisted.
type NotificationPrefs struct {
	OrderStatuses   bool `json:"order_statuses"`
	PasswordChanges bool `json:"password_changes"`
	SpecialOffers   bool `json:"special_offers"`
	Newsletter      bool `json:"newsletter"`
}

func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{
		OrderStatuses:   true,
		PasswordChanges: true,
		SpecialOffers:   true,
		Newsletter:      true,
	}
}

type Profile struct {
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Email         string            `json:"email"`
	PhoneNumber   string            `json:"phone_number"`
	Avatar        string            `json:"avatar,omitempty"`
	Notifications NotificationPrefs `json:"notifications"`
}

func (p Profile) HasAvatar() bool {
	return strings.TrimSpace(p.Avatar) != ""
}

// Initials is shown in place of a missing avatar.
func (p Profile) Initials() string {
	var b strings.Builder
	for _, s := range []string{p.FirstName, p.LastName} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(s)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// FormattedPhone renders ten unmasked digits as (XXX) XXX-XXXX.
// Anything else is returned unchanged.
func (p Profile) FormattedPhone() string {
	digits := UnmaskPhone(p.PhoneNumber)
	if len(digits) != 10 {
		return p.PhoneNumber
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// UnmaskPhone keeps only the digits of a masked phone input.
func UnmaskPhone(in string) string {
	var b strings.Builder
	for _, r := range in {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type AppState string

const (
	AppStateOnboarding AppState = "onboarding"
	AppStateHome       AppState = "home"
)
