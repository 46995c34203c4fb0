package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"notestack/internal/aside"
	"notestack/internal/config"
	"notestack/internal/history"
	"notestack/internal/links"
	"notestack/internal/loader"
	"notestack/internal/stack"
	"notestack/internal/surface"
)

// navigator bundles one browsing session over a fetched start page.
type navigator struct {
	page       *surface.Page
	classifier *links.Classifier
	session    *history.Session
	ctrl       *stack.Controller
}

func newNavigator(ctx context.Context, cfg config.Config) (*navigator, error) {
	fetcher, err := loader.NewHTTPFetcher(cfg.StartURL, cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	fetcher.MaxBytes = int64(cfg.MaxNoteBytes)

	body, err := fetcher.Fetch(ctx, cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("fetch start page: %w", err)
	}
	page, err := surface.Parse(bytes.NewReader(body), cfg.StartURL)
	if err != nil {
		return nil, err
	}
	classifier, err := links.NewClassifier(cfg.StartURL)
	if err != nil {
		return nil, err
	}
	measurer := aside.DefaultMeasurer()
	measurer.Columns = cfg.Columns
	measurer.AsideColumns = cfg.AsideColumns
	measurer.LineHeight = float64(cfg.LineHeight)

	ld := loader.New(fetcher, classifier, measurer)
	session := history.NewSession(cfg.StartURL, page.Title())
	bridge := history.NewBridge(session, page, history.TitleBase(page.Title()), cfg.TitleSeparator)
	ctrl, err := stack.New(page, ld, bridge)
	if err != nil {
		return nil, err
	}
	nav := &navigator{page: page, classifier: classifier, session: session, ctrl: ctrl}
	if err := ctrl.RestoreFromURL(ctx, cfg.StartURL); err != nil {
		slog.Warn("restore stacked notes", "url", cfg.StartURL, "err", err)
	}
	nav.syncLocation()
	return nav, nil
}

// address turns a typed link into the path a click on the same link would
// stack. Links that leave the site are refused.
func (n *navigator) address(raw string) (string, error) {
	path, internal := n.classifier.Classify(raw)
	if !internal {
		return "", fmt.Errorf("%s is not on this site", raw)
	}
	return path, nil
}

func (n *navigator) syncLocation() {
	if u, err := url.Parse(n.session.Current().URL); err == nil {
		n.page.SetLocation(u)
	}
}
