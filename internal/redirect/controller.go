// Package redirect drives the bank redirect page: resolve the target bank,
// try the native app deep link, fall back to the web URL after a short
// grace window.
//
// Detecting that a custom-scheme navigation actually reached a native app
// is not possible in any reliable cross-platform way. The controller keeps
// the original best-effort heuristic: a focus-loss signal inside the grace
// window counts as a successful handoff and suppresses the fallback. The
// manual link stays live as the user's escape hatch either way.
package redirect

import (
	"context"
	"net/url"
	"time"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/telemetry"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/webapp"
)

// State is the redirect page lifecycle state.
type State string

const (
	StateInit              State = "init"
	StateDirectoryLoading  State = "directory_loading"
	StateBankResolved      State = "bank_resolved"
	StateDeepLinkAttempted State = "deeplink_attempted"
	StateNativeAppOpened   State = "native_app_opened"
	StateFallbackNavigated State = "fallback_navigated"
)

// DefaultGrace is how long a deep link gets to foreground the native app
// before the fallback navigation fires.
const DefaultGrace = 1100 * time.Millisecond

// Page is the DOM contract of the redirect page: a status text element and
// a manual fallback link.
type Page interface {
	SetStatus(text string)
	SetFallbackLink(href string)
}

// Navigator performs page navigation. Setting a deep-link target may fail
// synchronously, which counts as an immediate deep-link failure.
type Navigator interface {
	Navigate(href string) error
}

// DirectoryLoader supplies the bank directory; it never fails.
type DirectoryLoader interface {
	LoadBanks(ctx context.Context) []banks.Bank
}

// Telemetry emits redirect page events, fire-and-forget.
type Telemetry interface {
	SendRedirectEvent(ctx context.Context, tg *webapp.Context, bankID, eventType, page string, extras map[string]any)
}

// Params are the redirect page query parameters, both optional.
type Params struct {
	TransferID string
	BankID     string
}

// ParseQuery extracts redirect parameters from a raw query string. Bad
// query strings yield empty params, never an error.
func ParseQuery(rawQuery string) Params {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Params{}
	}
	return Params{
		TransferID: values.Get("transfer_id"),
		BankID:     values.Get("bank_id"),
	}
}

// Controller orchestrates one redirect page view. All collaborators are
// injected; the controller owns only the grace timer.
type Controller struct {
	directory DirectoryLoader
	telemetry Telemetry
	page      Page
	nav       Navigator
	blur      <-chan struct{}
	grace     time.Duration
	log       *logger.Logger

	state State
	tg    *webapp.Context
	bank  banks.Bank
}

// NewController wires a controller for one page view. A nil blur channel
// means no focus-loss signal will ever arrive; zero grace gets the default.
func NewController(dir DirectoryLoader, tel Telemetry, page Page, nav Navigator, blur <-chan struct{}, grace time.Duration, log *logger.Logger) *Controller {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Controller{
		directory: dir,
		telemetry: tel,
		page:      page,
		nav:       nav,
		blur:      blur,
		grace:     grace,
		log:       log,
		state:     StateInit,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Bank returns the resolved bank descriptor, valid after Run.
func (c *Controller) Bank() banks.Bank {
	return c.bank
}

// Run executes the whole redirect sequence and returns the final state.
// Terminal states are native_app_opened and fallback_navigated; any other
// return value means the page stayed in place with a working manual link.
func (c *Controller) Run(ctx context.Context, tg *webapp.Context, params Params) State {
	if tg == nil {
		tg = &webapp.Context{}
	}

	// the bridge context is read-only; backfill the start param on a copy
	view := *tg
	if view.StartParam == "" {
		view.StartParam = params.TransferID
	}
	c.tg = &view

	c.telemetry.SendRedirectEvent(ctx, c.tg, params.BankID, telemetry.EventRedirectOpen, "", nil)

	c.state = StateDirectoryLoading
	list := c.directory.LoadBanks(ctx)
	c.bank = resolveBank(list, params.BankID)
	c.state = StateBankResolved

	c.page.SetStatus("Открываем " + c.bank.Title + "…")
	c.page.SetFallbackLink(manualLink(c.bank))

	return c.tryOpenBank(ctx)
}

// OnManualClick reports a tap on the manual fallback link. The browser
// follows the link natively; only the event is ours to emit.
func (c *Controller) OnManualClick(ctx context.Context) {
	c.telemetry.SendRedirectEvent(ctx, c.tg, c.bank.ID, "redirect_manual_click", "", nil)
}

// tryOpenBank races the deep link against the grace timer. A focus-loss
// signal within the window cancels the timer and counts as a native app
// handoff; both racers share one cancellation token.
func (c *Controller) tryOpenBank(ctx context.Context) State {
	c.telemetry.SendRedirectEvent(ctx, c.tg, c.bank.ID, "redirect_attempt", "", nil)

	if c.bank.Deeplink == "" {
		return c.fallback(ctx)
	}

	c.state = StateDeepLinkAttempted

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one-shot focus-loss listener
	go func() {
		select {
		case <-c.blur:
			cancel()
		case <-raceCtx.Done():
		}
	}()

	timer := time.NewTimer(c.grace)
	defer timer.Stop()

	if err := c.nav.Navigate(c.bank.Deeplink); err != nil {
		c.log.Warn().Err(err).Str("bank_id", c.bank.ID).Msg("deep link navigation failed")
		return c.fallback(ctx)
	}

	select {
	case <-timer.C:
		return c.fallback(ctx)
	case <-raceCtx.Done():
		if ctx.Err() != nil {
			// page itself went away, not a blur
			return c.state
		}
		c.state = StateNativeAppOpened
		return c.state
	}
}

// fallback navigates to the web URL when one exists; otherwise the page is
// left in place.
func (c *Controller) fallback(ctx context.Context) State {
	c.telemetry.SendRedirectEvent(ctx, c.tg, c.bank.ID, "redirect_fallback", "", nil)

	if c.bank.FallbackURL == "" {
		return c.state
	}

	if err := c.nav.Navigate(c.bank.FallbackURL); err != nil {
		c.log.Warn().Err(err).Str("bank_id", c.bank.ID).Msg("fallback navigation failed")
		return c.state
	}

	c.state = StateFallbackNavigated
	return c.state
}

// resolveBank picks the target descriptor: exact id match, then the first
// directory entry, then a synthesized degraded descriptor that still has a
// safe destination.
func resolveBank(list []banks.Bank, bankID string) banks.Bank {
	if b := banks.FindByID(list, bankID); b != nil {
		return *b
	}
	if len(list) > 0 {
		return list[0]
	}

	id := bankID
	if id == "" {
		id = "unknown"
	}
	return banks.Bank{
		ID:          id,
		Title:       "ваш банк",
		Deeplink:    "",
		FallbackURL: banks.PlaceholderURL,
	}
}

// manualLink picks the href for the manual fallback link.
func manualLink(b banks.Bank) string {
	switch {
	case b.FallbackURL != "":
		return b.FallbackURL
	case b.Deeplink != "":
		return b.Deeplink
	default:
		return banks.PlaceholderURL
	}
}
