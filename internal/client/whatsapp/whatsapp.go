// Package whatsapp builds WhatsApp deep links from stored phone numbers.
// Links are constructed entirely on the client; no server round-trip.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoPhoneDigits means the stored phone value contained no digits at
// all, so no link can be built. Surfaced to the user as a validation
// problem, never as a malformed link.
var ErrNoPhoneDigits = errors.New("phone number contains no digits")

// Digits extracts the numeric part of a stored phone string. Formatting
// like "(11) 99999-9999" is tolerated; everything non-numeric is dropped.
func Digits(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrNoPhoneDigits
	}
	return b.String(), nil
}

// ContactLink builds a wa.me link that opens a chat with the given phone
// pre-filled with message.
func ContactLink(phone, message string) (string, error) {
	digits, err := Digits(phone)
	if err != nil {
		return "", err
	}
	return "https://wa.me/" + digits + "?text=" + escape(message), nil
}

// ContactMessageForAd is the greeting pre-filled when contacting a seller
// about an ad.
func ContactMessageForAd(title string) string {
	return fmt.Sprintf("Olá! Vi seu anúncio \"%s\" no Aqui e tenho interesse.", title)
}

// ShareAdLink builds the api.whatsapp.com variant used for sharing an ad
// with anyone, no target phone attached.
func ShareAdLink(title, adURL string) string {
	text := fmt.Sprintf("Olha esse anúncio no Aqui: \"%s\" %s", title, adURL)
	return "https://api.whatsapp.com/send?text=" + escape(text)
}

// InviteLink builds a share link carrying a community's access code.
func InviteLink(communityName, accessCode string) string {
	text := fmt.Sprintf("Entre na comunidade \"%s\" no Aqui! Use o código de acesso %s.", communityName, accessCode)
	return "https://api.whatsapp.com/send?text=" + escape(text)
}

// escape percent-encodes for a query value, using %20 for spaces as
// WhatsApp expects.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
