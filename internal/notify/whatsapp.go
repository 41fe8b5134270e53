// Package notify composes WhatsApp deep links with prefilled messages.
// There is no messaging API involved: the link opens a chat with the text
// ready to send.
package notify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countryCode is prefixed to the 10-digit subscriber number in wa.me links.
const countryCode = "91"

// ErrInvalidPhone indicates the phone number cannot address a WhatsApp chat.
var ErrInvalidPhone = errors.New("phone number must contain at least 10 digits")

var inr = message.NewPrinter(language.English)

// NormalizePhone strips everything but digits from a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppLink builds a wa.me deep link for the phone number with the given
// prefilled text. The number is normalized to digits and must contain at
// least 10; the last 10 digits are used with the country code.
func WhatsAppLink(phone, text string) (string, error) {
	digits := NormalizePhone(phone)
	if len(digits) < 10 {
		return "", ErrInvalidPhone
	}
	subscriber := digits[len(digits)-10:]
	return fmt.Sprintf("https://wa.me/%s%s?text=%s", countryCode, subscriber, url.QueryEscape(text)), nil
}

// InvoiceMessage renders the thank-you text sent after checkout. Amounts
// are grouped the way receipts in the shop print them (1,23,456 style is
// left to the printer; links keep plain western grouping).
func InvoiceMessage(storeName, invoiceNumber string, total float64) string {
	return inr.Sprintf("Thank you for shopping at %s! Your invoice %s for Rs. %.2f has been generated.", storeName, invoiceNumber, total)
}
