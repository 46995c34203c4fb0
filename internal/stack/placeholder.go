package stack

import (
	"golang.org/x/net/html"

	"notestack/internal/dom"
)

// SlotState is the state of the slot the placeholder occupies.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotLoading
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotFailed:
		return "error"
	default:
		return "empty"
	}
}

// Placeholder marks the one stack slot whose note is being fetched. It is
// never a member of the stack.
type Placeholder struct {
	node  *html.Node
	state SlotState
	err   error
}

func newPlaceholder(node *html.Node) *Placeholder {
	return &Placeholder{node: node}
}

func (p *Placeholder) Node() *html.Node { return p.node }

func (p *Placeholder) State() SlotState { return p.state }

func (p *Placeholder) Err() error { return p.err }

func (p *Placeholder) Attached() bool { return p.node.Parent != nil }

func (p *Placeholder) loading() {
	p.state = SlotLoading
	p.err = nil
	dom.RemoveClass(p.node, "note-placeholder-error")
	dom.SetAttr(p.node, "data-state", SlotLoading.String())
	dom.RemoveAttr(p.node, "data-error")
}

func (p *Placeholder) fail(err error) {
	p.state = SlotFailed
	p.err = err
	dom.AddClass(p.node, "note-placeholder-error")
	dom.SetAttr(p.node, "data-state", SlotFailed.String())
	dom.SetAttr(p.node, "data-error", err.Error())
}

func (p *Placeholder) clear() {
	dom.Detach(p.node)
	p.state = SlotEmpty
	p.err = nil
}
