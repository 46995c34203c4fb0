package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/sync/semaphore"

	"notestack/internal/dom"
	"notestack/internal/history"
	"notestack/internal/loader"
	"notestack/internal/surface"
)

// Loader produces stackable notes.
type Loader interface {
	Load(ctx context.Context, address string, level int) (*loader.LoadedNote, error)
	Prepare(el *html.Node, address string, level int) (*loader.LoadedNote, error)
}

// Modifiers are the keys held while a link was activated.
type Modifiers struct {
	Ctrl bool
	Meta bool
}

// Controller drives the stack from link activations and history events.
// Navigation operations run one at a time; a second call waits for the
// first to finish or for its own context to end.
type Controller struct {
	page   *surface.Page
	stack  *Stack
	loader Loader
	bridge *history.Bridge
	sem    *semaphore.Weighted
}

// New adopts the notes already in the page's container. Elements that are
// not notes carrying a data-href are removed from the container.
func New(page *surface.Page, ld Loader, bridge *history.Bridge) (*Controller, error) {
	c := &Controller{
		page:   page,
		stack:  newStack(page),
		loader: ld,
		bridge: bridge,
		sem:    semaphore.NewWeighted(1),
	}
	for _, el := range dom.ElementChildren(page.Container()) {
		href, ok := dom.Attr(el, "data-href")
		if !loader.IsNote(el) || !ok {
			dom.Detach(el)
			continue
		}
		ln, err := ld.Prepare(el, href, c.stack.Len()+1)
		if err != nil {
			slog.Warn("drop unusable note", "href", href, "err", err)
			dom.Detach(el)
			continue
		}
		c.stack.seed(ln)
	}
	if c.stack.Len() == 0 {
		return nil, fmt.Errorf("no root note in %s", surface.ContainerID)
	}
	if err := bridge.Seed(c.stack.Addresses(), c.stack.Titles()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) Stack() *Stack { return c.stack }

func (c *Controller) Page() *surface.Page { return c.page }

func (c *Controller) lock(ctx context.Context) (func(), error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.sem.Release(1) }, nil
}

// resolveLevel maps a missing or out-of-range level to the current length,
// which appends.
func (c *Controller) resolveLevel(level int) int {
	if level <= 0 || level > c.stack.Len() {
		return c.stack.Len()
	}
	return level
}

// Open stacks address at level. A note already on the stack is scrolled
// into view instead.
func (c *Controller) Open(ctx context.Context, address string, level int) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return c.open(ctx, address, level)
}

// Navigate is Open followed by a history commit. The commit happens even
// when the fetch fails, since the stack was already truncated, and before
// the next operation may start.
func (c *Controller) Navigate(ctx context.Context, address string, level int) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	openErr := c.open(ctx, address, level)
	if _, err := c.bridge.Commit(c.stack.Addresses(), c.stack.Titles()); err != nil {
		return errors.Join(openErr, err)
	}
	return openErr
}

func (c *Controller) open(ctx context.Context, address string, level int) error {
	if i := c.stack.Index(address); i >= 0 {
		c.page.ScrollIntoView(c.stack.At(i).Content)
		return nil
	}
	c.stack.clearPlaceholder()
	level = c.resolveLevel(level)
	c.stack.Truncate(level)
	n, err := c.fetchAppend(ctx, address)
	if err != nil {
		c.commit(nil)
		return err
	}
	c.commit(n)
	return nil
}

// OpenMany truncates to level and stacks addresses in order, each one level
// deeper than the last. It stops at the first failure, keeping the notes
// stacked before it.
func (c *Controller) OpenMany(ctx context.Context, addresses []string, level int) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	c.stack.clearPlaceholder()
	c.stack.Truncate(c.resolveLevel(level))
	var last *Note
	for _, address := range addresses {
		n, err := c.fetchAppend(ctx, address)
		if err != nil {
			c.commit(last)
			return err
		}
		last = n
	}
	c.commit(last)
	return nil
}

// ReconcileTo makes the stack above the root match desired with as few
// fetches as possible. Notes up to the first mismatch are kept, the
// mismatching slot is swapped in place and the rest is appended.
func (c *Controller) ReconcileTo(ctx context.Context, desired []string) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	c.stack.clearPlaceholder()
	want := len(desired) + 1
	c.stack.Truncate(want)

	var last *Note
	for i := 1; i < c.stack.Len(); i++ {
		if c.stack.At(i).Address == desired[i-1] {
			continue
		}
		c.stack.Truncate(i + 1)
		n, err := c.fetchReplace(ctx, i, desired[i-1])
		if err != nil {
			c.commit(nil)
			return err
		}
		last = n
		break
	}
	for c.stack.Len() < want {
		n, err := c.fetchAppend(ctx, desired[c.stack.Len()-1])
		if err != nil {
			c.commit(last)
			return err
		}
		last = n
	}
	c.commit(last)
	return nil
}

// Unstack closes every note deeper than level. The root note always stays.
func (c *Controller) Unstack(ctx context.Context, level int) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	c.unstack(level)
	return nil
}

// Close is Unstack followed by a history commit.
func (c *Controller) Close(ctx context.Context, level int) error {
	unlock, err := c.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	c.unstack(level)
	_, err = c.bridge.Commit(c.stack.Addresses(), c.stack.Titles())
	return err
}

func (c *Controller) unstack(level int) {
	if level < 1 {
		level = 1
	}
	c.stack.clearPlaceholder()
	c.stack.Truncate(level)
	c.commit(c.stack.At(c.stack.Len() - 1))
}

// Activate handles a click on a prepared link. It reports false when the
// click should fall through to regular navigation.
func (c *Controller) Activate(ctx context.Context, a *html.Node, mods Modifiers) (bool, error) {
	link, ok := loader.StackLink(a)
	if !ok || mods.Ctrl || mods.Meta {
		return false, nil
	}
	return true, c.Navigate(ctx, link.Address, link.Level)
}

// HandlePop answers a back/forward navigation. Payloads that are not ours
// are ignored.
func (c *Controller) HandlePop(ctx context.Context, payload []byte) error {
	desired, ok := c.bridge.Restore(payload)
	if !ok {
		slog.Debug("ignore foreign history state")
		return nil
	}
	return c.ReconcileTo(ctx, desired)
}

// RestoreFromURL stacks the notes deep-linked in the page address on top
// of the root note and stamps the current history entry with the result.
func (c *Controller) RestoreFromURL(ctx context.Context, raw string) error {
	addresses := history.AddressesFromURL(raw)
	if len(addresses) == 0 {
		return nil
	}
	openErr := c.OpenMany(ctx, addresses, 1)
	if err := c.bridge.Replace(c.stack.Addresses(), c.stack.Titles()); err != nil {
		return err
	}
	return openErr
}

// FocusEntry scrolls to the note behind sidebar entry i.
func (c *Controller) FocusEntry(i int) bool {
	n := c.stack.At(i)
	if n == nil {
		return false
	}
	c.page.ScrollIntoView(n.Content)
	return true
}

func (c *Controller) fetchAppend(ctx context.Context, address string) (*Note, error) {
	c.stack.showPlaceholder(c.stack.Len())
	c.page.ScrollIntoView(c.stack.placeholder.Node())
	ln, err := c.loader.Load(ctx, address, c.stack.Len()+1)
	if err != nil {
		slog.Warn("load note failed", "address", address, "err", err)
		c.stack.failPlaceholder(err)
		return nil, err
	}
	n, err := c.stack.AppendLoaded(ln)
	if err != nil {
		c.stack.failPlaceholder(err)
		return nil, err
	}
	c.stack.clearPlaceholder()
	return n, nil
}

func (c *Controller) fetchReplace(ctx context.Context, index int, address string) (*Note, error) {
	c.stack.showPlaceholder(index)
	c.page.ScrollIntoView(c.stack.placeholder.Node())
	ln, err := c.loader.Load(ctx, address, index+1)
	if err != nil {
		slog.Warn("load note failed", "address", address, "err", err)
		c.stack.Truncate(index)
		c.stack.failPlaceholder(err)
		return nil, err
	}
	n, err := c.stack.ReplaceAt(index, ln)
	if err != nil {
		c.stack.Truncate(index)
		c.stack.failPlaceholder(err)
		return nil, err
	}
	c.stack.clearPlaceholder()
	return n, nil
}

// commit refreshes the title and centres focus, when given, after a
// navigation.
func (c *Controller) commit(focus *Note) {
	c.bridge.Retitle(c.stack.Titles())
	if focus != nil {
		c.page.ScrollIntoView(focus.Content)
	}
}
