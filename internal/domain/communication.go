package domain

// ─── Communication ──────────────────────────────────────────────────────────

// Communication is one SMS or voice exchange from a caller terminal to a
// receiver terminal. Its cost is computed once, when it ends, from the
// caller owner's loyalty state at that moment.
type Communication struct {
	id          string
	typ         CommunicationType
	from, to    *Terminal
	size        int
	durationSet bool
	cost        Cents
	payer       TaxNumber
	ended       bool
}

func newCommunication(typ CommunicationType, to, from *Terminal) (*Communication, error) {
	if to == nil || from == nil {
		return nil, invalidTransition("communication needs two terminals")
	}
	if to.net != from.net {
		return nil, invalidTransition("terminals %s and %s are on different networks", from.id, to.id)
	}
	return &Communication{
		id:   from.net.newID(),
		typ:  typ,
		from: from,
		to:   to,
	}, nil
}

// TextCommunication creates an SMS of length characters from from to to.
func TextCommunication(to, from *Terminal, length int) (*Communication, error) {
	if length < 0 {
		return nil, invalidState("message length %d is negative", length)
	}
	c, err := newCommunication(TypeSMS, to, from)
	if err != nil {
		return nil, err
	}
	c.size = TextSize(length)
	return c, nil
}

// VoiceCommunication creates a voice call from from to to. Its size is
// zero until SetDuration is called.
func VoiceCommunication(to, from *Terminal) (*Communication, error) {
	return newCommunication(TypeVoice, to, from)
}

// ID returns the communication identifier.
func (c *Communication) ID() string { return c.id }

// Type returns SMS or VOICE.
func (c *Communication) Type() CommunicationType { return c.typ }

// From returns the caller terminal.
func (c *Communication) From() *Terminal { return c.from }

// To returns the receiver terminal.
func (c *Communication) To() *Terminal { return c.to }

// Size returns the SMS size units or the call duration in seconds.
func (c *Communication) Size() int { return c.size }

// Ended reports whether the communication has been settled.
func (c *Communication) Ended() bool { return c.ended }

// SetDuration records the length of a voice call in seconds. It may be
// set once, before the call ends.
func (c *Communication) SetDuration(seconds int) error {
	switch {
	case c.typ != TypeVoice:
		return invalidTransition("duration only applies to voice calls")
	case c.ended:
		return invalidTransition("communication %s has already ended", c.id)
	case c.durationSet:
		return invalidTransition("duration of %s is already set", c.id)
	case seconds < 0:
		return invalidState("duration %d is negative", seconds)
	}
	c.size = seconds
	c.durationSet = true
	return nil
}

// End prices the communication, charges the caller and freezes the cost.
func (c *Communication) End() error {
	if c.ended {
		return invalidTransition("communication %s has already ended", c.id)
	}

	var points, friends int
	if owner := c.from.net.ownerOf(c.from.id); owner != nil {
		points, friends = owner.Points(), owner.NumberOfFriends()
		c.payer = owner.TaxNumber()
	}
	c.cost = ComputeCost(c.typ, c.size, points, friends)
	c.ended = true

	c.from.charge(c.cost)
	c.to.credit(0)
	c.from.net.settled(c)
	return nil
}

// Cost returns the frozen cost. It is only available after End.
func (c *Communication) Cost() (Cents, error) {
	if !c.ended {
		return 0, invalidTransition("cost of %s is not known before it ends", c.id)
	}
	return c.cost, nil
}

// Settlement returns the ledger view of an ended communication.
func (c *Communication) Settlement() (Settlement, error) {
	if !c.ended {
		return Settlement{}, invalidTransition("communication %s has not ended", c.id)
	}
	return Settlement{
		ID:    c.id,
		Type:  c.typ,
		From:  c.from.id,
		To:    c.to.id,
		Payer: c.payer,
		Size:  c.size,
		Cost:  c.cost,
	}, nil
}

func (t *Terminal) charge(amount Cents) { t.balance += amount }

// credit is where receiver-side rewards would apply; receivers are not
// paid for incoming traffic.
func (t *Terminal) credit(amount Cents) { t.balance -= amount }
