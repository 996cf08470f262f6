package domain

import (
	"strings"
	"testing"
)

// ─── Construction ───────────────────────────────────────────────────────────

func TestNewClient(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")

	if alice.Name() != "Alice" {
		t.Errorf("Name() = %q, want Alice", alice.Name())
	}
	if alice.TaxNumber() != 111 {
		t.Errorf("TaxNumber() = %d, want 111", alice.TaxNumber())
	}
	if alice.Points() != InitialPoints {
		t.Errorf("Points() = %d, want %d", alice.Points(), InitialPoints)
	}
	if alice.NumberOfTerminals() != 1 {
		t.Fatalf("NumberOfTerminals() = %d, want 1", alice.NumberOfTerminals())
	}
	t1 := mustTerminal(t, nw, "T1")
	if t1.Owner() != alice {
		t.Error("initial terminal should be owned by the new client")
	}
	if t1.Mode() != ModeOff {
		t.Errorf("initial terminal mode = %s, want OFF", t1.Mode())
	}
}

func TestNewClient_Invalid(t *testing.T) {
	nw := NewNetwork()
	newTestClient(t, nw, "Alice", 111, "T1")

	tests := []struct {
		name    string
		cname   string
		tax     TaxNumber
		initial TerminalID
		want    error
	}{
		{"empty name", "", 1, "X1", ErrInvalidState},
		{"name too long", strings.Repeat("a", 41), 1, "X1", ErrInvalidState},
		{"no terminal", "Bob", 1, "", ErrInvalidState},
		{"duplicate tax number", "Bob", 111, "X1", ErrClientExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nw.NewClient(tt.cname, tt.tax, tt.initial)
			wantErr(t, err, tt.want)
		})
	}
	if _, ok := nw.Terminal("X1"); ok {
		t.Error("failed construction must not register a terminal")
	}
}

func TestNewClient_TakesOverExistingTerminal(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	newTestTerminal(t, nw, "T2", alice)

	bob := newTestClient(t, nw, "Bob", 222, "T2")

	if alice.NumberOfTerminals() != 1 {
		t.Errorf("alice terminals = %d, want 1", alice.NumberOfTerminals())
	}
	if bob.NumberOfTerminals() != 1 || mustTerminal(t, nw, "T2").Owner() != bob {
		t.Error("T2 should now belong to bob only")
	}
}

// ─── Name & Points ──────────────────────────────────────────────────────────

func TestUpdateName(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")

	if err := alice.UpdateName(strings.Repeat("é", 40)); err != nil {
		t.Fatalf("40-character name rejected: %v", err)
	}
	wantErr(t, alice.UpdateName(""), ErrInvalidState)
	wantErr(t, alice.UpdateName(strings.Repeat("b", 41)), ErrInvalidState)
	if alice.Name() != strings.Repeat("é", 40) {
		t.Errorf("failed updates must keep the name, got %q", alice.Name())
	}
}

func TestUpdatePoints(t *testing.T) {
	tests := []struct {
		name   string
		delta  int
		ok     bool
		points int
	}{
		{"raise", 30, true, 50},
		{"lower", -5, true, 15},
		{"to zero", -20, true, 0},
		{"below zero", -21, false, 20},
		{"to maximum", 180, true, 200},
		{"above maximum", 181, false, 20},
		{"no change", 0, true, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, NewNetwork(), "Alice", 111, "T1")
			err := c.UpdatePoints(tt.delta)
			if tt.ok && err != nil {
				t.Fatalf("UpdatePoints(%d) error: %v", tt.delta, err)
			}
			if !tt.ok {
				wantErr(t, err, ErrInvalidState)
			}
			if c.Points() != tt.points {
				t.Errorf("Points() = %d, want %d", c.Points(), tt.points)
			}
		})
	}
}

// ─── Friends ────────────────────────────────────────────────────────────────

func TestAddFriend(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")

	if err := alice.AddFriend(bob); err != nil {
		t.Fatalf("AddFriend() error: %v", err)
	}
	if !alice.HasFriend(bob) {
		t.Error("alice should have bob as friend")
	}
	if bob.HasFriend(alice) {
		t.Error("friendship is one-directional")
	}
	if err := alice.AddFriend(bob); err != nil {
		t.Fatalf("duplicate AddFriend() error: %v", err)
	}
	if alice.NumberOfFriends() != 1 {
		t.Errorf("NumberOfFriends() = %d, want 1", alice.NumberOfFriends())
	}
	if !alice.RemoveFriend(bob) {
		t.Error("RemoveFriend(bob) = false, want true")
	}
	if alice.RemoveFriend(bob) {
		t.Error("second RemoveFriend(bob) = true, want false")
	}
	if alice.HasFriend(bob) {
		t.Error("bob should be gone")
	}
}

func TestAddFriend_Invalid(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	other := newTestClient(t, NewNetwork(), "Eve", 333, "E1")

	wantErr(t, alice.AddFriend(nil), ErrInvalidState)
	wantErr(t, alice.AddFriend(alice), ErrInvalidState)
	wantErr(t, alice.AddFriend(other), ErrInvalidState)
}

func TestAddFriend_SelfRejectedWithRoomInQuota(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	for i := 0; i < 4; i++ {
		newTestTerminal(t, nw, TerminalID(string(rune('A'+i))), alice)
	}
	if alice.FriendQuota() != 22 {
		t.Fatalf("FriendQuota() = %d, want 22", alice.FriendQuota())
	}
	wantErr(t, alice.AddFriend(alice), ErrInvalidState)
}

func TestAddFriend_Quota(t *testing.T) {
	for terminals := 1; terminals <= 3; terminals++ {
		nw := NewNetwork()
		c := newTestClient(t, nw, "Alice", 1, "T0")
		for i := 1; i < terminals; i++ {
			newTestTerminal(t, nw, TerminalID("T"+string(rune('0'+i))), c)
		}
		quota := 5*terminals - 3
		if c.FriendQuota() != quota {
			t.Fatalf("FriendQuota() with %d terminals = %d, want %d", terminals, c.FriendQuota(), quota)
		}

		for i := 0; i < quota; i++ {
			f := newTestClient(t, nw, "friend", TaxNumber(100+i), TerminalID("F"+string(rune('a'+i))))
			if err := c.AddFriend(f); err != nil {
				t.Fatalf("friend %d of %d rejected: %v", i+1, quota, err)
			}
		}
		extra := newTestClient(t, nw, "extra", 999, "FX")
		wantErr(t, c.AddFriend(extra), ErrInvalidState)
		if c.NumberOfFriends() != quota {
			t.Errorf("NumberOfFriends() = %d, want %d", c.NumberOfFriends(), quota)
		}
	}
}

func TestAddFriend_NoTerminals(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")

	ok, err := alice.RemoveTerminal(mustTerminal(t, nw, "T1"))
	if err != nil || !ok {
		t.Fatalf("RemoveTerminal() = %v, %v", ok, err)
	}
	if alice.FriendQuota() > 0 {
		t.Fatalf("FriendQuota() = %d, want <= 0", alice.FriendQuota())
	}
	wantErr(t, alice.AddFriend(bob), ErrInvalidState)
}

func TestFriends_Sorted(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 1, "T1")
	newTestTerminal(t, nw, "T1b", alice)
	for _, tax := range []TaxNumber{30, 10, 20} {
		f := newTestClient(t, nw, "f", tax, TerminalID("F"+string(rune('0'+tax/10))))
		if err := alice.AddFriend(f); err != nil {
			t.Fatal(err)
		}
	}
	got := alice.Friends()
	want := []TaxNumber{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Friends() = %v, want %v", got, want)
		}
	}
}

// ─── Terminals ──────────────────────────────────────────────────────────────

func TestAddTerminal(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")
	t2 := mustTerminal(t, nw, "T2")

	wantErr(t, alice.AddTerminal(nil), ErrInvalidState)

	if err := alice.AddTerminal(t2); err != nil {
		t.Fatalf("AddTerminal() error: %v", err)
	}
	if t2.Owner() != alice {
		t.Error("T2 should belong to alice")
	}
	if alice.NumberOfTerminals() != 2 || bob.NumberOfTerminals() != 0 {
		t.Errorf("terminals alice=%d bob=%d, want 2 and 0", alice.NumberOfTerminals(), bob.NumberOfTerminals())
	}

	if err := alice.AddTerminal(t2); err != nil {
		t.Fatalf("re-adding an owned terminal: %v", err)
	}
	if alice.NumberOfTerminals() != 2 {
		t.Errorf("re-adding must not duplicate, got %d terminals", alice.NumberOfTerminals())
	}

	ids := []TerminalID{}
	for _, term := range alice.Terminals() {
		ids = append(ids, term.ID())
	}
	if len(ids) != 2 || ids[0] != "T1" || ids[1] != "T2" {
		t.Errorf("Terminals() = %v, want [T1 T2]", ids)
	}
}

func TestAddTerminal_Unbounded(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T0")
	for i := 1; i < 20; i++ {
		newTestTerminal(t, nw, TerminalID("T"+strings.Repeat("x", i)), alice)
	}
	if alice.NumberOfTerminals() != 20 {
		t.Errorf("NumberOfTerminals() = %d, want 20", alice.NumberOfTerminals())
	}
}

func TestAddTerminal_Cap(t *testing.T) {
	nw := NewNetwork(WithMaxTerminals(2))
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")
	newTestTerminal(t, nw, "T3", alice)

	_, err := nw.NewTerminal("T4", alice)
	wantErr(t, err, ErrInvalidState)
	wantErr(t, alice.AddTerminal(mustTerminal(t, nw, "T2")), ErrInvalidState)
	if bob.NumberOfTerminals() != 1 {
		t.Error("a rejected transfer must leave the terminal with its owner")
	}
}

func TestRemoveTerminal(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	newTestClient(t, nw, "Bob", 222, "T2")
	t1 := mustTerminal(t, nw, "T1")

	ok, err := alice.RemoveTerminal(mustTerminal(t, nw, "T2"))
	if ok || err != nil {
		t.Errorf("removing an unowned terminal = %v, %v; want false, nil", ok, err)
	}

	ok, err = alice.RemoveTerminal(t1)
	if !ok || err != nil {
		t.Fatalf("RemoveTerminal(T1) = %v, %v; want true, nil", ok, err)
	}
	if alice.NumberOfTerminals() != 0 {
		t.Errorf("NumberOfTerminals() = %d, want 0", alice.NumberOfTerminals())
	}
	if _, registered := nw.Terminal("T1"); registered {
		t.Error("removed terminal should leave the network")
	}
	if t1.Owner() != nil {
		t.Error("removed terminal should have no owner")
	}
	if got, ok := nw.Retired("T1"); !ok || got != t1 {
		t.Error("removed terminal should be kept as retired")
	}

	if err := alice.AddTerminal(t1); err != nil {
		t.Fatalf("re-adding a removed terminal: %v", err)
	}
	if t1.Owner() != alice {
		t.Error("re-added terminal should belong to alice")
	}
}

func TestRemoveTerminal_IDStaysReserved(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")
	t1 := mustTerminal(t, nw, "T1")

	if ok, err := alice.RemoveTerminal(t1); !ok || err != nil {
		t.Fatalf("RemoveTerminal(T1) = %v, %v", ok, err)
	}

	_, err := nw.NewTerminal("T1", bob)
	wantErr(t, err, ErrTerminalExists)

	_, err = nw.NewClient("Carol", 333, "T1")
	wantErr(t, err, ErrTerminalExists)
	if _, ok := nw.Client(333); ok {
		t.Error("a refused client must not be registered")
	}

	impostor := &Terminal{net: nw, id: "T1"}
	wantErr(t, bob.AddTerminal(impostor), ErrInvalidState)

	if err := bob.AddTerminal(t1); err != nil {
		t.Fatalf("reinstating the retired terminal: %v", err)
	}
	if _, ok := nw.Retired("T1"); ok {
		t.Error("reinstated terminal should no longer be retired")
	}
	if got, ok := nw.Terminal("T1"); !ok || got != t1 {
		t.Error("reinstated terminal should be live under its id")
	}
}

func TestFriends_OtherNetwork(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	bob := newTestClient(t, nw, "Bob", 222, "T2")
	if err := alice.AddFriend(bob); err != nil {
		t.Fatal(err)
	}

	twin := newTestClient(t, NewNetwork(), "Bob", 222, "T2")
	if alice.HasFriend(twin) {
		t.Error("a client of another network is never a friend")
	}
	if alice.RemoveFriend(twin) {
		t.Error("RemoveFriend must ignore clients of another network")
	}
	if !alice.HasFriend(bob) {
		t.Error("bob should still be a friend")
	}
}

func TestRemoveTerminal_NegativeBalance(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	t1 := mustTerminal(t, nw, "T1")
	if err := t1.Pay(10); err != nil {
		t.Fatal(err)
	}

	ok, err := alice.RemoveTerminal(t1)
	if ok || err != nil {
		t.Errorf("RemoveTerminal() = %v, %v; want false, nil", ok, err)
	}
	if alice.NumberOfTerminals() != 1 {
		t.Errorf("NumberOfTerminals() = %d, want 1", alice.NumberOfTerminals())
	}
}

func TestRemoveTerminal_Busy(t *testing.T) {
	nw := NewNetwork()
	alice := newTestClient(t, nw, "Alice", 111, "T1")
	newTestClient(t, nw, "Bob", 222, "T2")
	t1, t2 := mustTerminal(t, nw, "T1"), mustTerminal(t, nw, "T2")
	turnOn(t, t1, t2)
	if _, err := t1.MakeVoiceCall(t2); err != nil {
		t.Fatal(err)
	}

	ok, err := alice.RemoveTerminal(t1)
	if ok {
		t.Error("a busy terminal must not be removed")
	}
	wantErr(t, err, ErrInvalidTransition)
}
