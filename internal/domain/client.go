package domain

import (
	"cmp"
	"slices"
	"unicode/utf8"
)

// ─── Client ─────────────────────────────────────────────────────────────────

const (
	// InitialPoints is the loyalty balance of a new client.
	InitialPoints = 20
	// MaxPoints is the upper bound of the loyalty balance.
	MaxPoints = 200
	// MaxNameLength is the longest accepted display name, in characters.
	MaxNameLength = 40
)

// Client owns terminals and a one-directional set of friends, and holds
// a loyalty balance in [0, MaxPoints].
type Client struct {
	net     *Network
	tax     TaxNumber
	name    string
	points  int
	friends map[TaxNumber]struct{}
}

func validateName(n string) error {
	if n == "" || utf8.RuneCountInString(n) > MaxNameLength {
		return invalidState("name must have 1 to %d characters", MaxNameLength)
	}
	return nil
}

// TaxNumber returns the client's immutable identity.
func (c *Client) TaxNumber() TaxNumber { return c.tax }

// Name returns the display name.
func (c *Client) Name() string { return c.name }

// Points returns the loyalty balance.
func (c *Client) Points() int { return c.points }

// UpdateName replaces the display name.
func (c *Client) UpdateName(n string) error {
	if err := validateName(n); err != nil {
		return err
	}
	c.name = n
	return nil
}

// UpdatePoints adds delta (which may be negative) to the loyalty balance.
// Nothing changes if the result would leave [0, MaxPoints].
func (c *Client) UpdatePoints(delta int) error {
	np := c.points + delta
	if np < 0 || np > MaxPoints {
		return invalidState("points %d out of range [0,%d]", np, MaxPoints)
	}
	c.points = np
	return nil
}

// FriendQuota returns how many friends the client may hold: five per
// terminal, minus three. It is zero or negative without terminals.
func (c *Client) FriendQuota() int {
	return 5*c.NumberOfTerminals() - 3
}

// AddFriend adds f to the friend set. Adding a friend twice is a no-op,
// but only while the quota still has room.
func (c *Client) AddFriend(f *Client) error {
	if f == nil || f == c {
		return invalidState("client cannot befriend itself or nobody")
	}
	if f.net != c.net {
		return invalidState("client %d belongs to another network", f.tax)
	}
	if len(c.friends) >= c.FriendQuota() {
		return invalidState("friend limit of %d reached", max(c.FriendQuota(), 0))
	}
	c.friends[f.tax] = struct{}{}
	return nil
}

// RemoveFriend removes f and reports whether it was a friend.
func (c *Client) RemoveFriend(f *Client) bool {
	if f == nil || f.net != c.net {
		return false
	}
	if _, ok := c.friends[f.tax]; !ok {
		return false
	}
	delete(c.friends, f.tax)
	return true
}

// HasFriend reports whether f is in the friend set.
func (c *Client) HasFriend(f *Client) bool {
	if f == nil || f.net != c.net {
		return false
	}
	_, ok := c.friends[f.tax]
	return ok
}

// Friends returns the friends' tax numbers in ascending order.
func (c *Client) Friends() []TaxNumber {
	out := make([]TaxNumber, 0, len(c.friends))
	for tax := range c.friends {
		out = append(out, tax)
	}
	slices.SortFunc(out, cmp.Compare[TaxNumber])
	return out
}

// NumberOfFriends returns the size of the friend set.
func (c *Client) NumberOfFriends() int { return len(c.friends) }

// NumberOfTerminals returns how many terminals the client owns.
func (c *Client) NumberOfTerminals() int {
	return len(c.net.owners.terminalsOf(c.tax))
}

// Terminals returns the owned terminals in the order they were acquired.
func (c *Client) Terminals() []*Terminal {
	ids := c.net.owners.terminalsOf(c.tax)
	out := make([]*Terminal, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.net.terminals[id])
	}
	return out
}

// Owns reports whether t is currently owned by c.
func (c *Client) Owns(t *Terminal) bool {
	if !c.net.attached(t) {
		return false
	}
	tax, ok := c.net.owners.ownerOf(t.id)
	return ok && tax == c.tax
}

// AddTerminal makes c the owner of t, taking it from any previous owner.
// A terminal that was removed from the network is put back into service.
func (c *Client) AddTerminal(t *Terminal) error {
	if t == nil {
		return invalidState("terminal is required")
	}
	if t.net != c.net {
		return invalidState("terminal %s belongs to another network", t.id)
	}
	if c.Owns(t) {
		return nil
	}
	if reg, ok := c.net.terminals[t.id]; ok && reg != t {
		return invalidState("terminal id %s is taken", t.id)
	}
	if old, ok := c.net.retired[t.id]; ok && old != t {
		return invalidState("terminal id %s is reserved", t.id)
	}
	if err := c.net.checkCapacity(c.tax); err != nil {
		return err
	}

	c.net.reinstate(t)
	c.net.owners.assign(t.id, c.tax)
	return nil
}

// RemoveTerminal gives up t and retires it from the network. It returns
// false when t is not owned by c or its balance is negative (paid in
// advance beyond its charges). A BUSY terminal cannot report its balance,
// so removing one fails with ErrInvalidTransition.
func (c *Client) RemoveTerminal(t *Terminal) (bool, error) {
	if t == nil || !c.Owns(t) {
		return false, nil
	}
	balance, err := t.Balance()
	if err != nil {
		return false, err
	}
	if balance < 0 {
		return false, nil
	}
	c.net.retire(t)
	return true, nil
}
