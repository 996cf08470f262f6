package domain

import (
	"errors"
	"fmt"
	"testing"
)

func newTestClient(t *testing.T, nw *Network, name string, tax TaxNumber, id TerminalID) *Client {
	t.Helper()
	c, err := nw.NewClient(name, tax, id)
	if err != nil {
		t.Fatalf("NewClient(%q, %d, %q) error: %v", name, tax, id, err)
	}
	return c
}

func newTestTerminal(t *testing.T, nw *Network, id TerminalID, owner *Client) *Terminal {
	t.Helper()
	term, err := nw.NewTerminal(id, owner)
	if err != nil {
		t.Fatalf("NewTerminal(%q) error: %v", id, err)
	}
	return term
}

func mustTerminal(t *testing.T, nw *Network, id TerminalID) *Terminal {
	t.Helper()
	term, ok := nw.Terminal(id)
	if !ok {
		t.Fatalf("terminal %q not registered", id)
	}
	return term
}

func turnOn(t *testing.T, terms ...*Terminal) {
	t.Helper()
	for _, term := range terms {
		if err := term.TurnOn(); err != nil {
			t.Fatalf("TurnOn(%s) error: %v", term.ID(), err)
		}
	}
}

// addStrangers befriends n fresh clients, growing c's terminal count so
// the quota allows it.
func addStrangers(t *testing.T, nw *Network, c *Client, n int) {
	t.Helper()
	for c.FriendQuota() < c.NumberOfFriends()+n {
		newTestTerminal(t, nw, TerminalID(fmt.Sprintf("%d-extra-%d", c.TaxNumber(), c.NumberOfTerminals())), c)
	}
	for i := 0; i < n; i++ {
		tax := TaxNumber(9000 + c.NumberOfFriends())
		for {
			if _, taken := nw.Client(tax); !taken {
				break
			}
			tax++
		}
		f := newTestClient(t, nw, fmt.Sprintf("friend %d", tax), tax, TerminalID(fmt.Sprintf("F%d", tax)))
		if err := c.AddFriend(f); err != nil {
			t.Fatalf("AddFriend(%d) error: %v", tax, err)
		}
	}
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
