package linkbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSberPhone(t *testing.T) {
	res := BuildSberPhone(Request{IdentifierType: TypePhone, IdentifierValue: "+7 999 888-77-66"})

	assert.Equal(t, "https://www.sberbank.com/sms/pbpn?requisiteNumber=+79998887766", res.Deeplink)
	assert.Equal(t, res.Deeplink, res.FallbackURL, "sber uses one universal link for both")
	assert.Equal(t, "sber:+79998887766", res.LinkID)
}

func TestBuildSberPhone_AddsPlus(t *testing.T) {
	res := BuildSberPhone(Request{IdentifierType: TypePhone, IdentifierValue: "79998887766"})

	assert.Equal(t, "https://www.sberbank.com/sms/pbpn?requisiteNumber=+79998887766", res.Deeplink)
}

func TestBuildTbankCard(t *testing.T) {
	res := BuildTbankCard(Request{IdentifierType: TypeCard, IdentifierValue: "1111 2222 3333 4444"})

	assert.Equal(t, "tbank://transfer/card?number=1111222233334444", res.Deeplink)
	assert.Equal(t, "https://www.tbank.ru/cards/transfer/?cardNumber=1111222233334444", res.FallbackURL)
	assert.Equal(t, "tbank:1111222233334444", res.LinkID)
}

func TestBuildVTB_Phone(t *testing.T) {
	res := BuildVTB(Request{IdentifierType: TypePhone, IdentifierValue: "+7 (123) 456-78-90"})

	assert.Equal(t, "vtb://p2p/71234567890", res.Deeplink)
	assert.Equal(t, "https://online.vtb.ru/payments/p2p?phone=71234567890", res.FallbackURL)
}

func TestBuildVTB_PhoneWithoutCountryCode(t *testing.T) {
	res := BuildVTB(Request{IdentifierType: TypePhone, IdentifierValue: "1234567890"})

	assert.Equal(t, "vtb://p2p/71234567890", res.Deeplink)
}

func TestBuildVTB_Card(t *testing.T) {
	res := BuildVTB(Request{IdentifierType: TypeCard, IdentifierValue: "5555-6666-7777-8888"})

	assert.Equal(t, "vtb://transfer/card/5555666677778888", res.Deeplink)
	assert.Equal(t, "https://online.vtb.ru/payments/card2card?cardNumber=5555666677778888", res.FallbackURL)
	assert.Equal(t, "vtb:card:5555666677778888", res.LinkID)
}

func TestBuild_Dispatch(t *testing.T) {
	tests := []struct {
		bankID       string
		req          Request
		wantDeeplink string
	}{
		{"sber", Request{TypePhone, "89998887766"}, "https://www.sberbank.com/sms/pbpn?requisiteNumber=+89998887766"},
		{"tbank", Request{TypeCard, "1111222233334444"}, "tbank://transfer/card?number=1111222233334444"},
		{"vtb", Request{TypeCard, "5555666677778888"}, "vtb://transfer/card/5555666677778888"},
	}

	for _, tt := range tests {
		t.Run(tt.bankID, func(t *testing.T) {
			res, err := Build(tt.bankID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeeplink, res.Deeplink)
		})
	}
}

func TestBuild_UnknownBank(t *testing.T) {
	_, err := Build("pochtab", Request{TypePhone, "79998887766"})
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "79998887766", digitsOnly("+7 (999) 888-77-66"))
	assert.Equal(t, "", digitsOnly("no digits here"))
}
