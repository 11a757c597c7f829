package redirect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/webapp"
)

// testGrace keeps the timer race fast in tests.
const testGrace = 30 * time.Millisecond

type fakeDirectory struct {
	list []banks.Bank
}

func (f *fakeDirectory) LoadBanks(ctx context.Context) []banks.Bank {
	return f.list
}

type sentEvent struct {
	BankID     string
	EventType  string
	Page       string
	TransferID string
}

type fakeTelemetry struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeTelemetry) SendRedirectEvent(ctx context.Context, tg *webapp.Context, bankID, eventType, page string, extras map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	transferID := ""
	if tg != nil {
		transferID = tg.StartParam
	}
	f.events = append(f.events, sentEvent{
		BankID:     bankID,
		EventType:  eventType,
		Page:       page,
		TransferID: transferID,
	})
}

func (f *fakeTelemetry) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.events))
	for i, e := range f.events {
		types[i] = e.EventType
	}
	return types
}

type fakePage struct {
	status string
	link   string
}

func (f *fakePage) SetStatus(text string)       { f.status = text }
func (f *fakePage) SetFallbackLink(href string) { f.link = href }

type fakeNav struct {
	mu        sync.Mutex
	targets   []string
	failFirst error
}

func (f *fakeNav) Navigate(href string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFirst != nil && len(f.targets) == 0 {
		f.targets = append(f.targets, href)
		return f.failFirst
	}
	f.targets = append(f.targets, href)
	return nil
}

func (f *fakeNav) visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.targets...)
}

type fixture struct {
	dir  *fakeDirectory
	tel  *fakeTelemetry
	page *fakePage
	nav  *fakeNav
	blur chan struct{}
	ctrl *Controller
}

func newFixture(list []banks.Bank) *fixture {
	f := &fixture{
		dir:  &fakeDirectory{list: list},
		tel:  &fakeTelemetry{},
		page: &fakePage{},
		nav:  &fakeNav{},
		blur: make(chan struct{}),
	}
	f.ctrl = NewController(f.dir, f.tel, f.page, f.nav, f.blur, testGrace, logger.Get())
	return f
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"both params", "transfer_id=tr-1&bank_id=vtb", Params{TransferID: "tr-1", BankID: "vtb"}},
		{"missing both", "", Params{}},
		{"only bank", "bank_id=sber", Params{BankID: "sber"}},
		{"garbage", "%zz;==", Params{}},
		{"extra params ignored", "transfer_id=tr-2&foo=bar", Params{TransferID: "tr-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.query))
		})
	}
}

func TestRun_SelectsBankByID(t *testing.T) {
	f := newFixture(banks.Builtin())

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "vtb"})

	assert.Equal(t, "vtb", f.ctrl.Bank().ID)
	assert.Contains(t, f.page.status, "ВТБ")
	assert.Equal(t, "https://online.vtb.ru/", f.page.link)
}

func TestRun_UnknownBankFallsBackToFirst(t *testing.T) {
	f := newFixture(banks.Builtin())

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "doesnotexist"})

	assert.Equal(t, "sber", f.ctrl.Bank().ID)
}

func TestRun_EmptyDirectorySynthesizesDescriptor(t *testing.T) {
	f := newFixture(nil)

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "mybank"})

	b := f.ctrl.Bank()
	assert.Equal(t, "mybank", b.ID)
	assert.NotEmpty(t, b.FallbackURL)
	assert.Empty(t, b.Deeplink)
}

func TestRun_EmptyDirectoryAndNoBankID(t *testing.T) {
	f := newFixture(nil)

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{})

	assert.Equal(t, "unknown", f.ctrl.Bank().ID)
	assert.NotEmpty(t, f.ctrl.Bank().FallbackURL)
}

func TestRun_NoDeeplinkGoesStraightToFallback(t *testing.T) {
	f := newFixture([]banks.Bank{
		{ID: "webonly", Title: "Веб-банк", FallbackURL: "https://web.example/"},
	})

	start := time.Now()
	state := f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "webonly"})

	assert.Equal(t, StateFallbackNavigated, state)
	assert.Equal(t, []string{"https://web.example/"}, f.nav.visited())
	assert.Less(t, time.Since(start), testGrace, "must not wait out the grace window")
	assert.Equal(t, []string{"redirect_open", "redirect_attempt", "redirect_fallback"}, f.tel.eventTypes())
}

func TestRun_DeeplinkTimerExpiresThenFallback(t *testing.T) {
	f := newFixture([]banks.Bank{
		{ID: "app", Title: "Апп-банк", Deeplink: "appbank://main", FallbackURL: "https://app.example/"},
	})

	state := f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "app"})

	assert.Equal(t, StateFallbackNavigated, state)
	assert.Equal(t, []string{"appbank://main", "https://app.example/"}, f.nav.visited())
	assert.Equal(t, []string{"redirect_open", "redirect_attempt", "redirect_fallback"}, f.tel.eventTypes())
}

func TestRun_BlurSuppressesFallback(t *testing.T) {
	f := newFixture([]banks.Bank{
		{ID: "app", Title: "Апп-банк", Deeplink: "appbank://main", FallbackURL: "https://app.example/"},
	})

	// the native app "takes over" right after the deep link fires
	go func() {
		time.Sleep(testGrace / 4)
		close(f.blur)
	}()

	state := f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "app"})

	assert.Equal(t, StateNativeAppOpened, state)
	assert.Equal(t, []string{"appbank://main"}, f.nav.visited(), "fallback navigation must be suppressed")

	types := f.tel.eventTypes()
	assert.NotContains(t, types, "redirect_fallback")
}

func TestRun_SyncNavigationErrorFallsBackImmediately(t *testing.T) {
	f := newFixture([]banks.Bank{
		{ID: "app", Title: "Апп-банк", Deeplink: "appbank://main", FallbackURL: "https://app.example/"},
	})
	f.nav.failFirst = errors.New("scheme not registered")

	start := time.Now()
	state := f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "app"})

	assert.Equal(t, StateFallbackNavigated, state)
	assert.Equal(t, []string{"appbank://main", "https://app.example/"}, f.nav.visited())
	assert.Less(t, time.Since(start), testGrace)
}

func TestRun_NoFallbackURLLeavesPageInPlace(t *testing.T) {
	f := newFixture([]banks.Bank{
		{ID: "applonly", Title: "Только апп", Deeplink: "applonly://main"},
	})

	state := f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "applonly"})

	assert.NotEqual(t, StateFallbackNavigated, state)
	assert.NotEqual(t, StateNativeAppOpened, state)
	assert.Equal(t, []string{"applonly://main"}, f.nav.visited())
	// manual link still points somewhere useful
	assert.Equal(t, "applonly://main", f.page.link)
}

func TestRun_BackfillsStartParam(t *testing.T) {
	f := newFixture(banks.Builtin())

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{TransferID: "tr-77", BankID: "vtb"})

	require.NotEmpty(t, f.tel.events)
	assert.Equal(t, "tr-77", f.tel.events[0].TransferID)
}

func TestRun_KeepsExistingStartParam(t *testing.T) {
	f := newFixture(banks.Builtin())

	tg := &webapp.Context{StartParam: "tr-original"}
	f.ctrl.Run(context.Background(), tg, Params{TransferID: "tr-query", BankID: "vtb"})

	assert.Equal(t, "tr-original", f.tel.events[0].TransferID)
	// the bridge context itself stays untouched
	assert.Equal(t, "tr-original", tg.StartParam)
}

func TestOnManualClick(t *testing.T) {
	f := newFixture(banks.Builtin())

	f.ctrl.Run(context.Background(), &webapp.Context{}, Params{BankID: "vtb"})
	f.tel.mu.Lock()
	f.tel.events = nil
	f.tel.mu.Unlock()

	f.ctrl.OnManualClick(context.Background())

	require.Len(t, f.tel.events, 1)
	assert.Equal(t, "redirect_manual_click", f.tel.events[0].EventType)
	assert.Equal(t, "vtb", f.tel.events[0].BankID)
}

func TestRun_NilContext(t *testing.T) {
	f := newFixture(banks.Builtin())

	assert.NotPanics(t, func() {
		f.ctrl.Run(context.Background(), nil, Params{BankID: "vtb"})
	})
}
