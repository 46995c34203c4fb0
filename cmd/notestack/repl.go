package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"notestack/internal/aside"
	"notestack/internal/dom"
	"notestack/internal/loader"
	"notestack/internal/stack"
)

const helpText = `commands:
  stack                     list the stacked notes
  links <level>             list the links of a note
  click <level> <k> [ctrl]  activate link k of a note
  open <address> [level]    stack a note above level
  close <level>             drop every note deeper than level
  back | forward            move through history
  history                   list history entries
  jump <entry id>           go to a history entry by id or id prefix
  goto <level>              focus a stacked note
  asides <level>            show annotation placement
  title | url | html        show the page title, address or markup
  help | quit`

var errQuit = errors.New("quit")

type repl struct {
	nav    *navigator
	out    io.Writer
	prompt bool
}

func newREPL(nav *navigator, out io.Writer) *repl {
	return &repl{nav: nav, out: out}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if r.prompt {
			fmt.Fprint(r.out, "notestack> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		err := r.exec(ctx, fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		r.nav.syncLocation()
	}
}

func (r *repl) exec(ctx context.Context, name string, args []string) error {
	ctrl := r.nav.ctrl
	switch name {
	case "stack", "ls":
		r.printStack()
	case "links":
		note, err := r.note(args, 0)
		if err != nil {
			return err
		}
		for k, a := range anchors(note) {
			if link, ok := loader.StackLink(a); ok {
				fmt.Fprintf(r.out, "%d. %s -> %s\n", k+1, link.Text, link.Address)
				continue
			}
			href, _ := dom.Attr(a, "href")
			fmt.Fprintf(r.out, "%d. %s (external) %s\n", k+1, strings.TrimSpace(dom.Text(a)), href)
		}
	case "click":
		note, err := r.note(args, 0)
		if err != nil {
			return err
		}
		k, err := intArg(args, 1)
		if err != nil {
			return err
		}
		list := anchors(note)
		if k < 1 || k > len(list) {
			return fmt.Errorf("no link %d", k)
		}
		mods := stack.Modifiers{}
		if len(args) > 2 {
			mods.Ctrl = args[2] == "ctrl"
			mods.Meta = args[2] == "meta"
		}
		handled, err := ctrl.Activate(ctx, list[k-1], mods)
		if err != nil {
			r.printStack()
			return err
		}
		if !handled {
			href, _ := dom.Attr(list[k-1], "href")
			fmt.Fprintf(r.out, "opens outside the stack: %s\n", href)
			return nil
		}
		r.printStack()
	case "open":
		if len(args) == 0 {
			return errors.New("usage: open <address> [level]")
		}
		level := 0
		if len(args) > 1 {
			v, err := intArg(args, 1)
			if err != nil {
				return err
			}
			level = v
		}
		address, err := r.nav.address(args[0])
		if err != nil {
			return err
		}
		if err := ctrl.Navigate(ctx, address, level); err != nil {
			r.printStack()
			return err
		}
		r.printStack()
	case "close":
		level, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if err := ctrl.Close(ctx, level); err != nil {
			return err
		}
		r.printStack()
	case "back", "forward":
		move := r.nav.session.Back
		if name == "forward" {
			move = r.nav.session.Forward
		}
		entry, ok := move()
		if !ok {
			return fmt.Errorf("nothing to go %s to", name)
		}
		if err := ctrl.HandlePop(ctx, entry.State); err != nil {
			r.printStack()
			return err
		}
		r.printStack()
	case "history":
		session := r.nav.session
		current := session.Current().ID
		for _, e := range session.Entries() {
			marker := " "
			if e.ID == current {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s  %s\n", marker, e.ID.String()[:8], e.Title)
		}
	case "jump":
		if len(args) == 0 {
			return errors.New("usage: jump <entry id>")
		}
		id, ok := r.nav.session.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no single history entry matches %q", args[0])
		}
		entry, ok := r.nav.session.Go(id)
		if !ok {
			return fmt.Errorf("no history entry %s", id)
		}
		if err := ctrl.HandlePop(ctx, entry.State); err != nil {
			r.printStack()
			return err
		}
		r.printStack()
	case "goto":
		level, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if !ctrl.FocusEntry(level - 1) {
			return fmt.Errorf("no note at level %d", level)
		}
		r.printStack()
	case "asides":
		note, err := r.note(args, 0)
		if err != nil {
			return err
		}
		for _, a := range dom.FindAll(note, dom.Tag("aside")) {
			name, _ := dom.Attr(a, "name")
			if dom.HasClass(a, aside.FloatingClass) {
				style, _ := dom.Attr(a, "style")
				fmt.Fprintf(r.out, "%s: %s\n", name, style)
				continue
			}
			fmt.Fprintf(r.out, "%s: inline\n", name)
		}
	case "title":
		fmt.Fprintln(r.out, r.nav.page.Title())
	case "url":
		fmt.Fprintln(r.out, r.nav.session.Current().URL)
	case "html":
		if err := r.nav.page.Render(r.out); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return nil
}

func (r *repl) printStack() {
	st := r.nav.ctrl.Stack()
	focused := r.nav.page.Focused()
	for _, n := range st.Notes() {
		marker := " "
		if n.Content == focused {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %d. %s  %s\n", marker, n.Level, n.Title, n.Address)
	}
	ph := st.Placeholder()
	switch ph.State() {
	case stack.SlotLoading:
		fmt.Fprintln(r.out, "  ... loading")
	case stack.SlotFailed:
		fmt.Fprintf(r.out, "  !  %v\n", ph.Err())
	}
}

// note resolves the level argument at position i to a stacked note.
func (r *repl) note(args []string, i int) (*html.Node, error) {
	level, err := intArg(args, i)
	if err != nil {
		return nil, err
	}
	n := r.nav.ctrl.Stack().At(level - 1)
	if n == nil {
		return nil, fmt.Errorf("no note at level %d", level)
	}
	return n.Content, nil
}

func anchors(note *html.Node) []*html.Node {
	var out []*html.Node
	for _, a := range dom.FindAll(note, dom.Tag("a")) {
		if _, ok := dom.Attr(a, "href"); ok {
			out = append(out, a)
		}
	}
	return out
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a number", args[i])
	}
	return v, nil
}
