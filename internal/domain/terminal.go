package domain

import "unicode/utf8"

// ─── Terminal ───────────────────────────────────────────────────────────────
//
//	OFF ──turnOn──▶ NORMAL ◀──toggle──▶ SILENT
//	                   │                   │
//	                   └──call──▶ BUSY ◀───┘   (ending restores the prior mode)
//
// BUSY is the only exclusion mechanism: a busy terminal cannot start
// another call, be turned off, or report its balance.

// MinPayment is the smallest amount a terminal accepts in Pay.
const MinPayment Cents = 5

// Terminal is a device owned by exactly one Client of its Network.
type Terminal struct {
	net      *Network
	id       TerminalID
	mode     TerminalMode
	prevMode TerminalMode
	balance  Cents
	ongoing  *Communication
}

// ID returns the terminal identifier.
func (t *Terminal) ID() TerminalID { return t.id }

// Mode returns the current mode.
func (t *Terminal) Mode() TerminalMode { return t.mode }

// Ongoing returns the active voice call, or nil.
func (t *Terminal) Ongoing() *Communication { return t.ongoing }

// Owner returns the owning client, or nil once the terminal has been
// removed from the network.
func (t *Terminal) Owner() *Client {
	if !t.net.attached(t) {
		return nil
	}
	return t.net.ownerOf(t.id)
}

// SetOwner hands the terminal over to c.
func (t *Terminal) SetOwner(c *Client) error {
	if c == nil {
		return invalidTransition("terminal %s needs an owner", t.id)
	}
	return c.AddTerminal(t)
}

// TurnOn switches an OFF terminal to NORMAL.
func (t *Terminal) TurnOn() error {
	if t.mode != ModeOff {
		return invalidTransition("terminal %s is already on (%s)", t.id, t.mode)
	}
	t.mode = ModeNormal
	return nil
}

// TurnOff switches the terminal OFF unless it is in a call.
func (t *Terminal) TurnOff() error {
	if t.mode == ModeBusy {
		return invalidTransition("terminal %s is busy", t.id)
	}
	t.mode = ModeOff
	return nil
}

// ToggleOnMode swaps NORMAL and SILENT.
func (t *Terminal) ToggleOnMode() error {
	switch t.mode {
	case ModeNormal:
		t.mode = ModeSilent
	case ModeSilent:
		t.mode = ModeNormal
	default:
		return invalidTransition("terminal %s cannot toggle while %s", t.id, t.mode)
	}
	return nil
}

// Pay reduces the terminal's debt by amount. Payments are only taken
// while the terminal is OFF and must be at least MinPayment.
func (t *Terminal) Pay(amount Cents) error {
	if t.mode != ModeOff {
		return invalidTransition("terminal %s must be off to pay", t.id)
	}
	if amount < MinPayment {
		return invalidTransition("payment of %d is below the minimum of %d", amount, MinPayment)
	}
	t.balance -= amount
	return nil
}

// Balance returns the balance in cents. It is not observable mid-call.
func (t *Terminal) Balance() (Cents, error) {
	if t.mode == ModeBusy {
		return 0, invalidTransition("terminal %s is busy", t.id)
	}
	return t.balance, nil
}

// SendSMS sends msg to to and reports whether it was delivered. A
// recipient that is OFF, or SILENT without the sender's owner among its
// owner's friends, does not receive it and nothing is charged. Delivered
// messages are billed immediately.
func (t *Terminal) SendSMS(to *Terminal, msg string) (bool, error) {
	if t.mode == ModeOff || t.mode == ModeBusy {
		return false, invalidTransition("terminal %s cannot send while %s", t.id, t.mode)
	}
	if err := t.checkPeer(to); err != nil {
		return false, err
	}

	switch to.mode {
	case ModeOff:
		return false, nil
	case ModeSilent:
		if !to.Owner().HasFriend(t.Owner()) {
			return false, nil
		}
	}

	c, err := TextCommunication(to, t, utf8.RuneCountInString(msg))
	if err != nil {
		return false, err
	}
	if err := c.End(); err != nil {
		return false, err
	}
	return true, nil
}

// MakeVoiceCall starts a voice call to to, which must be NORMAL. Both
// terminals become BUSY together or neither changes.
func (t *Terminal) MakeVoiceCall(to *Terminal) (*Communication, error) {
	if t.mode == ModeOff || t.mode == ModeBusy {
		return nil, invalidTransition("terminal %s cannot call while %s", t.id, t.mode)
	}
	if err := t.checkPeer(to); err != nil {
		return nil, err
	}
	if to == t {
		return nil, invalidTransition("terminal %s cannot call itself", t.id)
	}
	if to.mode != ModeNormal {
		return nil, invalidTransition("terminal %s cannot accept a call while %s", to.id, to.mode)
	}

	c, err := VoiceCommunication(to, t)
	if err != nil {
		return nil, err
	}
	t.enterCall(c)
	to.enterCall(c)
	return c, nil
}

// EndOngoingCommunication settles the active call and returns both ends
// to the mode they had before it. Either end may hang up.
func (t *Terminal) EndOngoingCommunication() (*Communication, error) {
	c := t.ongoing
	if c == nil {
		return nil, invalidTransition("terminal %s has no ongoing communication", t.id)
	}
	if err := c.End(); err != nil {
		return nil, err
	}

	peer := c.to
	if peer == t {
		peer = c.from
	}
	t.leaveCall()
	peer.leaveCall()
	return c, nil
}

func (t *Terminal) enterCall(c *Communication) {
	t.prevMode = t.mode
	t.mode = ModeBusy
	t.ongoing = c
}

func (t *Terminal) leaveCall() {
	t.mode = t.prevMode
	t.ongoing = nil
}

// checkPeer verifies that both ends of a communication are live
// terminals of the same network.
func (t *Terminal) checkPeer(to *Terminal) error {
	if to == nil {
		return invalidTransition("terminal %s has no destination", t.id)
	}
	if !t.net.attached(t) {
		return invalidTransition("terminal %s is not in service", t.id)
	}
	if !t.net.attached(to) {
		return invalidTransition("terminal %s is not in service", to.id)
	}
	return nil
}
