// Package telemetry builds and transmits mini app usage events.
//
// Every send is fire-and-forget: the caller never sees an error and never
// blocks on the network. Delivery and ordering are explicitly not
// guaranteed; a lost event costs nothing but a diagnostic log line.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/webapp"
)

// event types and pages
const (
	EventWebAppOpen   = "webapp_open"
	EventBankClick    = "bank_click"
	EventRedirectOpen = "redirect_open"

	PageMiniApp  = "miniapp"
	PageRedirect = "redirect"
)

// Client posts event payloads to the collection endpoint.
type Client struct {
	endpoint string
	env      webapp.Environment
	httpc    *http.Client
	log      *logger.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

// NewClient creates a telemetry client. An empty endpoint disables network
// access entirely: events are built and logged, nothing is sent.
func NewClient(endpoint string, env webapp.Environment, log *logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		env:      env,
		httpc:    &http.Client{Timeout: 5 * time.Second},
		log:      log,
		now:      time.Now,
	}
}

// SendOpenEvent reports that the mini app main page was opened.
func (c *Client) SendOpenEvent(ctx context.Context, tg *webapp.Context) {
	c.send(ctx, c.BuildPayload(tg, EventWebAppOpen, PageMiniApp, "", nil))
}

// SendBankSelected reports that the user tapped a bank on the main page.
func (c *Client) SendBankSelected(ctx context.Context, tg *webapp.Context, bankID string) {
	c.send(ctx, c.BuildPayload(tg, EventBankClick, PageMiniApp, bankID, nil))
}

// SendRedirectEvent reports a redirect page lifecycle moment. Empty
// eventType defaults to "redirect_open", empty page to "redirect".
func (c *Client) SendRedirectEvent(ctx context.Context, tg *webapp.Context, bankID, eventType, page string, extras map[string]any) {
	if eventType == "" {
		eventType = EventRedirectOpen
	}
	if page == "" {
		page = PageRedirect
	}
	c.send(ctx, c.BuildPayload(tg, eventType, page, bankID, extras))
}

// BuildPayload assembles the flat event record. Extras are merged last and
// may override any base field.
func (c *Client) BuildPayload(tg *webapp.Context, eventType, page, bankID string, extras map[string]any) map[string]any {
	if tg == nil {
		tg = &webapp.Context{}
	}

	transferID := tg.StartParam
	if transferID == "" {
		transferID = tg.InitDataUnsafe.StartParam
	}

	transferPayload := tg.TransferPayload
	if transferPayload == nil {
		transferPayload = map[string]any{}
	}

	payload := map[string]any{
		"transfer_id":               transferID,
		"transfer_payload":          transferPayload,
		"inline_creator_tg_user_id": valueOr(transferPayload, "creator_tg_user_id", nil),
		"inline_generated_at":       valueOr(transferPayload, "generated_at", ""),
		"inline_parsed":             valueOr(transferPayload, "parsed", map[string]any{}),
		"inline_option":             valueOr(transferPayload, "option", map[string]any{}),
		"event_type":                eventType,
		"ts":                        c.now().UTC().Format(time.RFC3339),
		"initData":                  tg.InitData,
		"initDataUnsafe":            tg.InitDataUnsafe,
		"userAgent":                 c.env.UserAgent,
		"language":                  c.env.Language,
		"platform":                  c.env.Platform,
		"page":                      page,
		"bank_id":                   bankID,
	}

	for k, v := range extras {
		payload[k] = v
	}

	return payload
}

// send transmits the payload without blocking the caller. All failures are
// reduced to a warn log; the response body is never inspected.
func (c *Client) send(ctx context.Context, payload map[string]any) {
	if c.endpoint == "" {
		c.log.Debug().
			Str("event_type", str(payload["event_type"])).
			Msg("telemetry endpoint not configured, event skipped")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn().Err(err).Msg("telemetry payload marshal failed")
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			c.log.Warn().Err(err).Msg("telemetry request build failed")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			c.log.Warn().Err(err).Msg("telemetry send failed")
			return
		}
		// response is ignored by contract
		resp.Body.Close()
	}()
}

// Flush waits for in-flight sends, used on graceful shutdown and in tests.
func (c *Client) Flush() {
	c.wg.Wait()
}

func valueOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return def
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
