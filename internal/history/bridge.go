// Package history mirrors the note stack into navigable history entries and
// the page address.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	QueryParam       = "stacked-notes"
	DefaultSeparator = " » "
	baseSeparator    = " · "
)

// State is the payload stored with each history entry. Addresses hold the
// whole stack, root included.
type State struct {
	Addresses []string `json:"addresses"`
}

// Navigator is the history the bridge writes to.
type Navigator interface {
	Current() Entry
	Push(state []byte, title, url string) Entry
	Replace(state []byte, title, url string) Entry
}

// Titler receives the visible document title.
type Titler interface {
	SetTitle(title string)
}

type Bridge struct {
	nav       Navigator
	titler    Titler
	titleBase string
	separator string
}

func NewBridge(nav Navigator, titler Titler, titleBase, separator string) *Bridge {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Bridge{nav: nav, titler: titler, titleBase: titleBase, separator: separator}
}

// TitleBase keeps the site part of a "Site · Page" title.
func TitleBase(title string) string {
	site, _, _ := strings.Cut(title, baseSeparator)
	return site + baseSeparator
}

func (b *Bridge) Title(titles []string) string {
	return b.titleBase + strings.Join(titles, b.separator)
}

// Retitle updates the visible title without touching history.
func (b *Bridge) Retitle(titles []string) {
	b.titler.SetTitle(b.Title(titles))
}

// Commit records the stack as a new history entry. It reports false when the
// stack is unchanged from the current entry and nothing was pushed.
func (b *Bridge) Commit(addresses, titles []string) (bool, error) {
	state, err := encodeState(addresses)
	if err != nil {
		return false, err
	}
	title := b.Title(titles)
	b.titler.SetTitle(title)
	current := b.nav.Current()
	if bytes.Equal(current.State, state) {
		return false, nil
	}
	u, err := ShareURL(current.URL, addresses)
	if err != nil {
		return false, err
	}
	b.nav.Push(state, title, u)
	return true, nil
}

// Seed stamps the current entry with the startup stack when it has no state
// of its own, so that navigating back to it can be reconciled.
func (b *Bridge) Seed(addresses, titles []string) error {
	current := b.nav.Current()
	if _, ok := b.Restore(current.State); ok {
		return nil
	}
	state, err := encodeState(addresses)
	if err != nil {
		return err
	}
	b.nav.Replace(state, b.Title(titles), current.URL)
	return nil
}

// Replace overwrites the current entry with the stack, keeping the page
// address in step.
func (b *Bridge) Replace(addresses, titles []string) error {
	state, err := encodeState(addresses)
	if err != nil {
		return err
	}
	title := b.Title(titles)
	b.titler.SetTitle(title)
	u, err := ShareURL(b.nav.Current().URL, addresses)
	if err != nil {
		return err
	}
	b.nav.Replace(state, title, u)
	return nil
}

// Restore extracts the stacked addresses, root excluded, from a history
// payload. Payloads of another shape are not ours and yield false.
func (b *Bridge) Restore(payload []byte) ([]string, bool) {
	return Restore(payload)
}

func Restore(payload []byte) ([]string, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, false
	}
	field, ok := raw["addresses"]
	if !ok {
		return nil, false
	}
	var addresses []string
	if err := json.Unmarshal(field, &addresses); err != nil || len(addresses) == 0 {
		return nil, false
	}
	return append([]string{}, addresses[1:]...), true
}

func encodeState(addresses []string) ([]byte, error) {
	data, err := json.Marshal(State{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("encode history state: %w", err)
	}
	return data, nil
}

// ShareURL sets the query representation of the stack, root excluded, on
// raw.
func ShareURL(raw string, addresses []string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	rest := []string{}
	if len(addresses) > 1 {
		rest = addresses[1:]
	}
	encoded, err := json.Marshal(rest)
	if err != nil {
		return "", fmt.Errorf("encode stacked notes: %w", err)
	}
	q := u.Query()
	q.Set(QueryParam, string(encoded))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AddressesFromURL reads the deep-linked stack from a page address. Anything
// other than a JSON array of strings is ignored.
func AddressesFromURL(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	value := u.Query().Get(QueryParam)
	if value == "" {
		return nil
	}
	var addresses []string
	if err := json.Unmarshal([]byte(value), &addresses); err != nil {
		return nil
	}
	return addresses
}
