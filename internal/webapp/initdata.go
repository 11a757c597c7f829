package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNoHash       = errors.New("init data has no hash field")
	ErrBadSignature = errors.New("init data signature mismatch")
)

// ParseInitData parses a raw init data query string into its unsafe form
// without verifying the signature.
func ParseInitData(raw string) (InitDataUnsafe, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitDataUnsafe{}, err
	}

	unsafe := InitDataUnsafe{
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
		Hash:       values.Get("hash"),
	}

	if v := values.Get("auth_date"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			unsafe.AuthDate = ts
		}
	}

	if v := values.Get("user"); v != "" {
		var u User
		if err := json.Unmarshal([]byte(v), &u); err == nil {
			unsafe.User = &u
		}
	}

	return unsafe, nil
}

// ValidateInitData verifies the Telegram WebApp signature of a raw init
// data string against the bot token. The scheme is the documented one:
// HMAC-SHA256 over the sorted key=value lines, keyed by
// HMAC-SHA256("WebAppData", botToken).
func ValidateInitData(raw, botToken string) error {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return err
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return ErrNoHash
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	checkString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))

	if hex.EncodeToString(mac.Sum(nil)) != gotHash {
		return ErrBadSignature
	}
	return nil
}
