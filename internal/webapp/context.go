// Package webapp models the Telegram Mini App bridge: the launch context a
// page receives from Telegram and the transfer descriptor packed into the
// start parameter.
package webapp

import (
	"encoding/base64"
	"encoding/json"
)

// User is the Telegram user carried inside initDataUnsafe.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// InitDataUnsafe is the parsed, unverified form of the init data string.
type InitDataUnsafe struct {
	QueryID    string `json:"query_id,omitempty"`
	User       *User  `json:"user,omitempty"`
	AuthDate   int64  `json:"auth_date,omitempty"`
	StartParam string `json:"start_param,omitempty"`
	Hash       string `json:"hash,omitempty"`
}

// Context is the launch context supplied by the Telegram bridge, consumed
// read-only for the lifetime of one page view.
type Context struct {
	InitData        string
	InitDataUnsafe  InitDataUnsafe
	StartParam      string
	TransferPayload map[string]any
}

// Environment carries the page environment fields copied into every
// telemetry event.
type Environment struct {
	UserAgent string
	Language  string
	Platform  string
}

// DecodeStartParam decodes the transfer descriptor packed into a launch
// parameter. The bot encodes it as base64url JSON; anything that does not
// decode that way is treated as a bare transfer id and yields no payload.
func DecodeStartParam(param string) map[string]any {
	if param == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(param)
	if err != nil {
		if raw, err = base64.URLEncoding.DecodeString(param); err != nil {
			return nil
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}
