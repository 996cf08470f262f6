package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ─── Network ────────────────────────────────────────────────────────────────
// The Network is the arena every Client and Terminal lives in. Entities
// refer to each other by TaxNumber and TerminalID; who owns which
// terminal is answered by one registry, never by fields on both sides.

// Option configures a Network.
type Option func(*Network)

// WithMaxTerminals caps the number of terminals a single client may own.
// Zero means unbounded.
func WithMaxTerminals(n int) Option {
	return func(nw *Network) {
		if n > 0 {
			nw.maxTerminals = n
		}
	}
}

// WithIDGenerator sets the source of communication identifiers.
func WithIDGenerator(gen func() string) Option {
	return func(nw *Network) {
		if gen != nil {
			nw.newID = gen
		}
	}
}

// WithSettlementHook registers fn to run after every communication
// settles: immediately for a delivered SMS, at call end for voice.
func WithSettlementHook(fn func(*Communication)) Option {
	return func(nw *Network) {
		nw.onSettle = fn
	}
}

// Network holds clients, terminals and the ownership relation between them.
type Network struct {
	clients   map[TaxNumber]*Client
	terminals map[TerminalID]*Terminal
	retired   map[TerminalID]*Terminal
	owners    ownership

	maxTerminals int
	newID        func() string
	onSettle     func(*Communication)
}

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	nw := &Network{
		clients:   make(map[TaxNumber]*Client),
		terminals: make(map[TerminalID]*Terminal),
		retired:   make(map[TerminalID]*Terminal),
		owners:    newOwnership(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(nw)
	}
	return nw
}

// NewClient registers a client together with its first terminal. If a
// terminal with the given id already exists it changes hands to the new
// client, otherwise a new OFF terminal is created. Ids of retired
// terminals stay reserved.
func (nw *Network) NewClient(name string, tax TaxNumber, initial TerminalID) (*Client, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, ok := nw.clients[tax]; ok {
		return nil, ErrClientExists
	}
	if initial == "" {
		return nil, invalidState("client needs an initial terminal")
	}
	if _, ok := nw.retired[initial]; ok {
		return nil, fmt.Errorf("%w: %s is retired", ErrTerminalExists, initial)
	}

	c := &Client{
		net:     nw,
		tax:     tax,
		name:    name,
		points:  InitialPoints,
		friends: make(map[TaxNumber]struct{}),
	}
	nw.clients[tax] = c

	if _, ok := nw.terminals[initial]; !ok {
		nw.terminals[initial] = &Terminal{net: nw, id: initial, mode: ModeOff}
	}
	nw.owners.assign(initial, tax)
	return c, nil
}

// NewTerminal registers an OFF terminal owned by owner. The id must not
// belong to a live or a retired terminal.
func (nw *Network) NewTerminal(id TerminalID, owner *Client) (*Terminal, error) {
	if id == "" || owner == nil {
		return nil, invalidTransition("terminal needs an id and an owner")
	}
	if owner.net != nw {
		return nil, invalidTransition("owner %d belongs to another network", owner.tax)
	}
	if nw.idTaken(id) {
		return nil, ErrTerminalExists
	}
	if err := nw.checkCapacity(owner.tax); err != nil {
		return nil, err
	}

	t := &Terminal{net: nw, id: id, mode: ModeOff}
	nw.terminals[id] = t
	nw.owners.assign(id, owner.tax)
	return t, nil
}

// Client looks up a client by tax number.
func (nw *Network) Client(tax TaxNumber) (*Client, bool) {
	c, ok := nw.clients[tax]
	return c, ok
}

// Terminal looks up a registered terminal by id.
func (nw *Network) Terminal(id TerminalID) (*Terminal, bool) {
	t, ok := nw.terminals[id]
	return t, ok
}

// Clients returns all clients ordered by tax number.
func (nw *Network) Clients() []*Client {
	out := make([]*Client, 0, len(nw.clients))
	for _, c := range nw.clients {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Client) int { return cmp.Compare(a.tax, b.tax) })
	return out
}

// Retired looks up a terminal that was removed from service. Only that
// terminal object can bring its id back into use.
func (nw *Network) Retired(id TerminalID) (*Terminal, bool) {
	t, ok := nw.retired[id]
	return t, ok
}

// Terminals returns all registered terminals ordered by id.
func (nw *Network) Terminals() []*Terminal {
	out := make([]*Terminal, 0, len(nw.terminals))
	for _, t := range nw.terminals {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Terminal) int { return cmp.Compare(a.id, b.id) })
	return out
}

func (nw *Network) checkCapacity(tax TaxNumber) error {
	if nw.maxTerminals > 0 && len(nw.owners.terminalsOf(tax)) >= nw.maxTerminals {
		return invalidState("client %d already owns %d terminals", tax, nw.maxTerminals)
	}
	return nil
}

// ownerOf resolves the client currently owning terminal id.
func (nw *Network) ownerOf(id TerminalID) *Client {
	tax, ok := nw.owners.ownerOf(id)
	if !ok {
		return nil
	}
	return nw.clients[tax]
}

// attached reports whether t is the terminal registered under its id.
func (nw *Network) attached(t *Terminal) bool {
	return t != nil && t.net == nw && nw.terminals[t.id] == t
}

func (nw *Network) idTaken(id TerminalID) bool {
	_, live := nw.terminals[id]
	_, gone := nw.retired[id]
	return live || gone
}

// retire drops a terminal from service and from its owner. Its id stays
// reserved so the terminal's account is never shared with a newcomer.
func (nw *Network) retire(t *Terminal) {
	nw.owners.release(t.id)
	delete(nw.terminals, t.id)
	nw.retired[t.id] = t
}

// reinstate puts a retired terminal back into service.
func (nw *Network) reinstate(t *Terminal) {
	delete(nw.retired, t.id)
	nw.terminals[t.id] = t
}

func (nw *Network) settled(c *Communication) {
	if nw.onSettle != nil {
		nw.onSettle(c)
	}
}

// ─── Ownership Registry ─────────────────────────────────────────────────────

// ownership is the single source of truth for who owns which terminal.
// Both directions are updated together by assign and release only.
type ownership struct {
	owner map[TerminalID]TaxNumber
	held  map[TaxNumber][]TerminalID
}

func newOwnership() ownership {
	return ownership{
		owner: make(map[TerminalID]TaxNumber),
		held:  make(map[TaxNumber][]TerminalID),
	}
}

// assign gives terminal id to tax, taking it away from any previous owner.
func (o *ownership) assign(id TerminalID, tax TaxNumber) {
	if prev, ok := o.owner[id]; ok {
		if prev == tax {
			return
		}
		o.drop(prev, id)
	}
	o.owner[id] = tax
	o.held[tax] = append(o.held[tax], id)
}

// release removes terminal id from its owner. It reports whether the
// terminal had one.
func (o *ownership) release(id TerminalID) bool {
	prev, ok := o.owner[id]
	if !ok {
		return false
	}
	o.drop(prev, id)
	delete(o.owner, id)
	return true
}

func (o *ownership) drop(tax TaxNumber, id TerminalID) {
	ids := o.held[tax]
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(o.held, tax)
		return
	}
	o.held[tax] = ids
}

func (o *ownership) ownerOf(id TerminalID) (TaxNumber, bool) {
	tax, ok := o.owner[id]
	return tax, ok
}

func (o *ownership) terminalsOf(tax TaxNumber) []TerminalID {
	return o.held[tax]
}
