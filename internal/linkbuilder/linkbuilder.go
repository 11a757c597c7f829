// Package linkbuilder assembles per-bank transfer links from a recipient
// identifier (phone number or card number).
package linkbuilder

import (
	"errors"
	"strings"
)

// identifier types
const (
	TypePhone = "phone"
	TypeCard  = "card"
)

var ErrUnknownBank = errors.New("no link builder for bank")

// Request carries the recipient identifier to build links for.
type Request struct {
	IdentifierType  string
	IdentifierValue string
}

// Result is a ready pair of destinations plus a stable id for telemetry.
type Result struct {
	Deeplink    string
	FallbackURL string
	LinkID      string
}

// Build dispatches to the builder for the given bank id.
func Build(bankID string, req Request) (Result, error) {
	switch bankID {
	case "sber":
		return BuildSberPhone(req), nil
	case "tbank":
		return BuildTbankCard(req), nil
	case "vtb":
		return BuildVTB(req), nil
	default:
		return Result{}, ErrUnknownBank
	}
}

// BuildSberPhone builds the Sber SMS/P2P transfer link for a phone number.
// The same URL works as a deep link and as a browser fallback.
func BuildSberPhone(req Request) Result {
	phone := normalizePhonePlus(req.IdentifierValue)
	link := "https://www.sberbank.com/sms/pbpn?requisiteNumber=" + phone
	return Result{
		Deeplink:    link,
		FallbackURL: link,
		LinkID:      "sber:" + phone,
	}
}

// BuildTbankCard builds the T-Bank card transfer pair.
func BuildTbankCard(req Request) Result {
	card := digitsOnly(req.IdentifierValue)
	return Result{
		Deeplink:    "tbank://transfer/card?number=" + card,
		FallbackURL: "https://www.tbank.ru/cards/transfer/?cardNumber=" + card,
		LinkID:      "tbank:" + card,
	}
}

// BuildVTB builds the VTB pair for either a card or a phone identifier.
// Anything that is not a card is treated as a phone number.
func BuildVTB(req Request) Result {
	digits := digitsOnly(req.IdentifierValue)

	if req.IdentifierType == TypeCard {
		return Result{
			Deeplink:    "vtb://transfer/card/" + digits,
			FallbackURL: "https://online.vtb.ru/payments/card2card?cardNumber=" + digits,
			LinkID:      "vtb:" + TypeCard + ":" + digits,
		}
	}

	phone := digits
	if !strings.HasPrefix(phone, "7") {
		phone = "7" + phone
	}
	return Result{
		Deeplink:    "vtb://p2p/" + phone,
		FallbackURL: "https://online.vtb.ru/payments/p2p?phone=" + phone,
		LinkID:      "vtb:" + req.IdentifierType + ":" + digits,
	}
}

// digitsOnly strips everything but digits from an identifier.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizePhonePlus keeps digits and a leading plus, adding the plus when
// it is missing.
func normalizePhonePlus(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if !strings.HasPrefix(out, "+") {
		out = "+" + out
	}
	return out
}
