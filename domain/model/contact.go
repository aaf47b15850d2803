package model

import (
	"fmt"
	"net/url"
	"strings"
)

const whatsAppBaseURL = "https://wa.me/"

// NormalizePhoneNumber strips every non-digit and rewrites local Indonesian
// numbers to the 62 country prefix.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, "0") {
		return "62" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "62") {
		return "62" + cleaned
	}
	return cleaned
}

// WhatsAppURL builds a wa.me link with a prefilled greeting for the offer owner
func WhatsAppURL(phone, name, skill string) string {
	number := NormalizePhoneNumber(phone)
	if number == "" {
		return ""
	}
	message := fmt.Sprintf(
		"Halo %s, saya tertarik dengan layanan %s yang Anda tawarkan di Bantuan-Kita. Bisakah kita diskusi lebih lanjut?",
		name, skill,
	)
	return whatsAppBaseURL + number + "?text=" + url.QueryEscape(message)
}
