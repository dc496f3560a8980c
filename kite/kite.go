// Package kite scrapes the holdings page of a Kite (Zerodha) account with a
// real browser. Kite has no personal-use API tier, so the flow drives a
// visible Chrome window: credentials are auto-filled, the user completes
// the 2FA step by hand, and the scraper waits for the post-login redirect
// before reading the holdings table.
package kite

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/rachitg/kitefolio"
)

const (
	LoginURL    = "https://kite.zerodha.com/"
	HoldingsURL = "https://kite.zerodha.com/holdings"
)

// postLoginURLRe matches any page Kite lands on after a completed login.
var postLoginURLRe = regexp.MustCompile(`https://kite\.zerodha\.com/(dashboard|holdings|positions)`)

// extractRowsJS reads every holdings table row into a RowData object.
// Selectors are calibrated against Kite's holdings page DOM.
const extractRowsJS = `
Array.from(document.querySelectorAll('.holdings-table tbody tr')).map(function(row) {
	var cell = function(label) {
		var td = row.querySelector('td[data-label="' + label + '"]');
		return td ? td.innerText.trim() : '';
	};
	var nameEl = row.querySelector('td[data-label="Instrument"] a span:first-child') ||
		row.querySelector('td[data-label="Instrument"]');
	var tip = row.querySelector('td[data-label="Day chg."] span[data-tooltip-content]');
	return {
		instrument: nameEl ? nameEl.innerText.trim() : '',
		quantity: cell('Qty.'),
		avg_cost: cell('Avg. cost'),
		ltp: cell('LTP'),
		current_value: cell('Cur. val'),
		pnl: cell('P&L'),
		pnl_percent: cell('Net chg.'),
		day_change_percent: cell('Day chg.'),
		day_change_tooltip: tip ? (tip.getAttribute('data-tooltip-content') || '') : ''
	};
})`

// Fetcher drives one browser tab through the login and holdings flow.
type Fetcher struct {
	ctx context.Context
	log zerolog.Logger
}

// NewFetcher wraps an existing chromedp context, typically one created by
// NewBrowser.
func NewFetcher(ctx context.Context, log zerolog.Logger) *Fetcher {
	return &Fetcher{ctx: ctx, log: log.With().Str("component", "kite").Logger()}
}

// NewBrowser starts a headful Chrome instance. The window must stay visible
// for the user to complete Kite's 2FA step.
func NewBrowser(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("start-maximized", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	return ctx, func() {
		ctxCancel()
		allocCancel()
	}
}

// OpenLoginPage navigates to the Kite login form.
func (f *Fetcher) OpenLoginPage() error {
	return chromedp.Run(f.ctx, chromedp.Navigate(LoginURL))
}

// FillLoginCredentials types the user ID and password into the login form
// and submits both steps. The 2FA prompt that follows is left to the user.
func (f *Fetcher) FillLoginCredentials(userID, password string) error {
	f.log.Info().Msg("filling login credentials, complete 2FA in the browser")
	return chromedp.Run(f.ctx,
		chromedp.WaitVisible(`#userid`, chromedp.ByID),
		chromedp.SendKeys(`#userid`, userID, chromedp.ByID),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[type="password"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	)
}

// WaitForLogin polls the page URL until it matches a post-login page or the
// timeout elapses. The default window is generous because the user is
// completing 2FA by hand.
func (f *Fetcher) WaitForLogin(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(f.ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		var location string
		if err := chromedp.Run(f.ctx, chromedp.Location(&location)); err != nil {
			return err
		}
		if postLoginURLRe.MatchString(location) {
			f.log.Info().Str("url", location).Msg("login complete")
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for login: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// NavigateToHoldings opens the holdings page and waits until the table has
// finished loading.
func (f *Fetcher) NavigateToHoldings() error {
	return chromedp.Run(f.ctx,
		chromedp.Navigate(HoldingsURL),
		chromedp.WaitVisible(`.holdings`, chromedp.ByQuery),
		chromedp.WaitNotPresent(`.holdings .su-loader`, chromedp.ByQuery),
	)
}

// FetchHoldings reads the holdings table. Malformed rows are logged and
// skipped, never fatal: a partially readable page still yields a snapshot.
func (f *Fetcher) FetchHoldings() ([]kitefolio.Holding, error) {
	var rows []RowData
	if err := chromedp.Run(f.ctx, chromedp.Evaluate(extractRowsJS, &rows)); err != nil {
		return nil, fmt.Errorf("reading holdings table: %w", err)
	}

	holdings := make([]kitefolio.Holding, 0, len(rows))
	for _, row := range rows {
		h, err := ParseRow(row)
		if err != nil {
			f.log.Warn().Err(err).Msg("skipping malformed holdings row")
			continue
		}
		holdings = append(holdings, h)
	}
	f.log.Info().Int("holdings", len(holdings)).Msg("holdings fetched")
	return holdings, nil
}
