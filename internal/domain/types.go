// Package domain contains the terminal billing core: the Network arena,
// clients, terminals, communications and the tariff. It has no
// infrastructure imports and no locking; callers that share a Network
// across goroutines must serialize access themselves.
package domain

import (
	"fmt"
	"strings"
)

// ─── Identity Types ─────────────────────────────────────────────────────────

// TaxNumber identifies a Client inside a Network.
type TaxNumber int

// TerminalID identifies a Terminal inside a Network.
type TerminalID string

// Cents is a signed amount of money in cents.
type Cents int64

// ─── Terminal Mode ──────────────────────────────────────────────────────────

// TerminalMode is the operational state of a Terminal.
type TerminalMode uint8

const (
	ModeOff TerminalMode = iota
	ModeNormal
	ModeSilent
	ModeBusy
)

// ParseTerminalMode parses "off", "normal", "silent" or "busy"
// (case-insensitive).
func ParseTerminalMode(s string) (TerminalMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "normal":
		return ModeNormal, nil
	case "silent":
		return ModeSilent, nil
	case "busy":
		return ModeBusy, nil
	default:
		return 0, fmt.Errorf("terminal mode: bad %q", s)
	}
}

func (m TerminalMode) String() string {
	switch m {
	case ModeOff:
		return "OFF"
	case ModeNormal:
		return "NORMAL"
	case ModeSilent:
		return "SILENT"
	case ModeBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the mode as its upper-case name.
func (m TerminalMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ─── Communication Type ─────────────────────────────────────────────────────

// CommunicationType distinguishes text messages from voice calls.
type CommunicationType uint8

const (
	TypeSMS CommunicationType = iota
	TypeVoice
)

// ParseCommunicationType parses "sms" or "voice" (case-insensitive).
func ParseCommunicationType(s string) (CommunicationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms", "text":
		return TypeSMS, nil
	case "voice":
		return TypeVoice, nil
	default:
		return 0, fmt.Errorf("communication type: bad %q", s)
	}
}

func (t CommunicationType) String() string {
	switch t {
	case TypeSMS:
		return "SMS"
	case TypeVoice:
		return "VOICE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the type as its upper-case name.
func (t CommunicationType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names ParseCommunicationType does.
func (t *CommunicationType) UnmarshalText(b []byte) error {
	v, err := ParseCommunicationType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
