package history

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type titleSink struct{ title string }

func (t *titleSink) SetTitle(title string) { t.title = title }

func TestCommitRestoreRoundTrip(t *testing.T) {
	session := NewSession("https://garden.example/?x=1", "Garden · Home")
	sink := &titleSink{}
	b := NewBridge(session, sink, TitleBase("Garden · Home"), "")

	addresses := []string{"/", "/notes/a", "/notes/b"}
	pushed, err := b.Commit(addresses, []string{"Home", "A", "B"})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !pushed || session.Len() != 2 {
		t.Fatalf("expected a pushed entry, got pushed=%v len=%d", pushed, session.Len())
	}
	if sink.title != "Garden · Home » A » B" {
		t.Fatalf("unexpected title %q", sink.title)
	}

	got, ok := b.Restore(session.Current().State)
	if !ok {
		t.Fatalf("expected restorable state")
	}
	if !reflect.DeepEqual(got, addresses[1:]) {
		t.Fatalf("expected %v, got %v", addresses[1:], got)
	}

	shared := AddressesFromURL(session.Current().URL)
	if !reflect.DeepEqual(shared, addresses[1:]) {
		t.Fatalf("expected url to carry %v, got %v (%s)", addresses[1:], shared, session.Current().URL)
	}
	if !strings.Contains(session.Current().URL, "x=1") {
		t.Fatalf("existing query lost: %s", session.Current().URL)
	}
}

func TestCommitSkipsUnchangedState(t *testing.T) {
	session := NewSession("https://garden.example/", "Garden · Home")
	b := NewBridge(session, &titleSink{}, "Garden · ", "")
	if _, err := b.Commit([]string{"/", "/a"}, []string{"Home", "A"}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	pushed, err := b.Commit([]string{"/", "/a"}, []string{"Home", "A"})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if pushed || session.Len() != 2 {
		t.Fatalf("expected no second entry, got pushed=%v len=%d", pushed, session.Len())
	}
}

func TestRestoreRejectsForeignState(t *testing.T) {
	cases := []string{
		``,
		`null`,
		`[]`,
		`{"notes":["/"]}`,
		`{"addresses":"nope"}`,
		`{"addresses":[]}`,
		`{"addresses":[1,2]}`,
		`not json`,
	}
	for _, c := range cases {
		if got, ok := Restore([]byte(c)); ok {
			t.Fatalf("%q: expected no state, got %v", c, got)
		}
	}
	got, ok := Restore([]byte(`{"addresses":["/"]}`))
	if !ok || len(got) != 0 {
		t.Fatalf("root-only state should restore to an empty stack, got %v %v", got, ok)
	}
}

func TestAddressesFromURL(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{`https://g.example/?stacked-notes=%5B%22%2Fa%22%2C%22%2Fb%22%5D`, []string{"/a", "/b"}},
		{`https://g.example/?stacked-notes=[]`, []string{}},
		{`https://g.example/?stacked-notes={"a":1}`, nil},
		{`https://g.example/?stacked-notes=oops`, nil},
		{`https://g.example/`, nil},
	}
	for _, c := range cases {
		got := AddressesFromURL(c.raw)
		if len(got) != len(c.want) {
			t.Fatalf("%s: expected %v, got %v", c.raw, c.want, got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: expected %v, got %v", c.raw, c.want, got)
			}
		}
	}
}

func TestSeedStampsInitialEntry(t *testing.T) {
	session := NewSession("https://garden.example/", "Garden · Home")
	b := NewBridge(session, &titleSink{}, "Garden · ", "")
	if err := b.Seed([]string{"/"}, []string{"Home"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := b.Commit([]string{"/", "/a"}, []string{"Home", "A"}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	entry, ok := session.Back()
	if !ok {
		t.Fatalf("expected to go back")
	}
	got, ok := b.Restore(entry.State)
	if !ok || len(got) != 0 {
		t.Fatalf("expected the seeded root-only state, got %v %v", got, ok)
	}
	if err := b.Seed([]string{"/", "/zzz"}, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got, _ := b.Restore(session.Current().State); len(got) != 0 {
		t.Fatalf("seed must not overwrite existing state, got %v", got)
	}
}

func TestSessionForwardDroppedAfterPush(t *testing.T) {
	s := NewSession("u0", "t0")
	s.Push(nil, "t1", "u1")
	s.Push(nil, "t2", "u2")
	if e, ok := s.Back(); !ok || e.URL != "u1" {
		t.Fatalf("expected back to u1, got %+v", e)
	}
	s.Push(nil, "t3", "u3")
	if _, ok := s.Forward(); ok {
		t.Fatalf("forward entries should be dropped after push")
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}
	if s.Current().ID == s.entries[0].ID {
		t.Fatalf("entries must have distinct ids")
	}
}

func TestReplaceOverwritesCurrentEntry(t *testing.T) {
	session := NewSession("https://garden.example/", "Garden · Home")
	sink := &titleSink{}
	b := NewBridge(session, sink, TitleBase("Garden · Home"), "")

	if err := b.Replace([]string{"/", "/a"}, []string{"Home", "A"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if session.Len() != 1 {
		t.Fatalf("replace must not push, got %d entries", session.Len())
	}
	got, ok := b.Restore(session.Current().State)
	if !ok || !reflect.DeepEqual(got, []string{"/a"}) {
		t.Fatalf("unexpected state %v", got)
	}
	if !strings.Contains(session.Current().URL, QueryParam+"=") || sink.title != "Garden · Home » A" {
		t.Fatalf("unexpected entry %+v title %q", session.Current(), sink.title)
	}
}

func TestSessionGoByID(t *testing.T) {
	s := NewSession("u0", "t0")
	first := s.Current().ID
	s.Push(nil, "t1", "u1")
	s.Push(nil, "t2", "u2")
	s.Replace([]byte(`{"addresses":["/"]}`), "t2", "u2")

	entries := s.Entries()
	if len(entries) != 3 || entries[2].ID != s.Current().ID {
		t.Fatalf("replace must keep the entry id")
	}
	if e, ok := s.Go(first); !ok || e.URL != "u0" {
		t.Fatalf("expected to jump to u0, got %+v", e)
	}
	if e, ok := s.Forward(); !ok || e.URL != "u1" {
		t.Fatalf("go must move the cursor, forward gave %+v", e)
	}

	id, ok := s.Lookup(entries[2].ID.String()[:8])
	if !ok || id != entries[2].ID {
		t.Fatalf("expected the prefix to resolve")
	}
	if _, ok := s.Lookup(""); ok {
		t.Fatalf("an empty reference must not resolve")
	}
	if _, ok := s.Go(uuid.New()); ok {
		t.Fatalf("unknown ids must not move the cursor")
	}
	if s.Current().URL != "u1" {
		t.Fatalf("cursor moved on a failed go: %s", s.Current().URL)
	}
}
