// Package directory loads the bank directory resource for the mini app.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/banks"
	"github.com/ichfliegemitdemflugzeug/bankhop/internal/logger"
)

// Loader fetches the bank directory with a built-in fallback list.
type Loader struct {
	resourceURL string
	httpc       *http.Client
	fallback    []banks.Bank
	log         *logger.Logger
}

// NewLoader creates a directory loader for the given resource URL. The
// fallback list substitutes the remote directory on any load failure; nil
// means the built-in registry.
func NewLoader(resourceURL string, fallback []banks.Bank, log *logger.Logger) *Loader {
	if fallback == nil {
		fallback = banks.Builtin()
	}
	return &Loader{
		resourceURL: resourceURL,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		fallback:    fallback,
		log:         log,
	}
}

// LoadBanks returns the bank directory. It never fails: any fetch or parse
// error is logged and collapsed into the fallback list, so callers always
// get a usable (possibly degraded) directory.
func (l *Loader) LoadBanks(ctx context.Context) []banks.Bank {
	list, err := l.fetch(ctx)
	if err != nil {
		l.log.Warn().Err(err).Str("url", l.resourceURL).Msg("bank directory load failed, using fallback list")
		return l.fallback
	}
	return list
}

// fetch performs the actual no-cache GET and JSON decode. Descriptor fields
// are passed through verbatim, without per-entry validation.
func (l *Loader) fetch(ctx context.Context) ([]banks.Bank, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directory body: %w", err)
	}

	var list []banks.Bank
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}

	return list, nil
}
