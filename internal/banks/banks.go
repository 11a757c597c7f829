// Package banks holds the bank directory model and the built-in registry.
package banks

// Bank describes one entry of the bank directory served to the mini app.
type Bank struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Logo        string `json:"logo" yaml:"logo"`
	Deeplink    string `json:"deeplink" yaml:"deeplink"`
	FallbackURL string `json:"fallback_url" yaml:"fallback_url"`
}

// PlaceholderURL is the known-good external destination used when a bank
// has neither a resolvable deep link nor a fallback of its own.
const PlaceholderURL = "https://www.google.com/search?q=%D0%BA%D0%BE%D1%82%D0%B8%D0%BA%D0%B8"

// Builtin returns the hardcoded bank list used when no registry file is
// configured or the remote directory cannot be loaded. Order matters: the
// first entry is the default pick when a requested bank id is unknown.
func Builtin() []Bank {
	return []Bank{
		{
			ID:          "sber",
			Title:       "Сбербанк",
			Logo:        "img/LOGO_SBER.png",
			Deeplink:    "",
			FallbackURL: "https://www.sberbank.com/sms/pbpn",
		},
		{
			ID:          "tbank",
			Title:       "Т-Банк",
			Logo:        "img/LOGO_TBANK.png",
			Deeplink:    "tbank://Main",
			FallbackURL: "https://www.tbank.ru/mybank/",
		},
		{
			ID:          "vtb",
			Title:       "ВТБ",
			Logo:        "img/LOGO_VTB.png",
			Deeplink:    "vtb://main",
			FallbackURL: "https://online.vtb.ru/",
		},
		{
			ID:          "alfa",
			Title:       "Альфа-Банк",
			Logo:        "img/LOGO_ALFABANK.png",
			Deeplink:    "alfabank://main",
			FallbackURL: "https://web.alfabank.ru/",
		},
		{
			ID:          "mkb",
			Title:       "МКБ",
			Logo:        "img/LOGO_MKB.png",
			Deeplink:    "mkbonline://main",
			FallbackURL: "https://online.mkb.ru/",
		},
		{
			ID:          "psb",
			Title:       "ПСБ",
			Logo:        "img/LOGO_PSB.png",
			Deeplink:    "psb://main",
			FallbackURL: "https://ib.psbank.ru/",
		},
		{
			ID:          "gazprom",
			Title:       "Газпромбанк",
			Logo:        "img/LOGO_GAZPROMBANK.png",
			Deeplink:    "gpb://main",
			FallbackURL: "https://www.gazprombank.ru/",
		},
		{
			ID:          "pochtab",
			Title:       "Почта Банк",
			Logo:        "img/LOGO_POCHTABANK.png",
			Deeplink:    "pochtabank://main",
			FallbackURL: "https://my.pochtabank.ru/",
		},
		{
			ID:          "rshb",
			Title:       "Россельхозбанк",
			Logo:        "img/LOGO_RSHB.png",
			Deeplink:    "rshb://main",
			FallbackURL: "https://online.rshb.ru/",
		},
		{
			ID:          "sovcom",
			Title:       "Совкомбанк",
			Logo:        "img/LOGO_SOVKOMBANK.png",
			Deeplink:    "sovcombank://main",
			FallbackURL: "https://online.sovcombank.ru/",
		},
	}
}

// FindByID returns the bank with the given id, or nil when absent.
func FindByID(list []Bank, id string) *Bank {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
