package chat

import (
	"slices"
	"testing"
	"time"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/live"
)

func msg(id, from, to string) api.Message {
	return api.Message{ID: id, SenderID: from, ReceiverID: to, Text: "text " + id}
}

func ids(msgs []api.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestThreadSnapshotReplacesContents(t *testing.T) {
	th := NewThread()
	gen := th.Reset("bob")
	if th.Loaded() {
		t.Fatal("Loaded before snapshot")
	}
	if !th.ApplySnapshot(gen, []api.Message{msg("1", "me", "bob"), msg("2", "bob", "me")}) {
		t.Fatal("ApplySnapshot rejected current generation")
	}
	if got := ids(th.Messages()); !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("messages = %v", got)
	}
	if !th.Loaded() {
		t.Error("Loaded = false after snapshot")
	}
}

func TestThreadSelectingOtherPartnerClears(t *testing.T) {
	th := NewThread()
	gen := th.Reset("bob")
	th.ApplySnapshot(gen, []api.Message{msg("1", "me", "bob")})

	th.Reset("carol")
	if th.Len() != 0 {
		t.Fatalf("Len = %d after Reset, want 0", th.Len())
	}
	if th.PartnerID() != "carol" {
		t.Errorf("PartnerID = %q", th.PartnerID())
	}
}

func TestThreadDropsStaleSnapshot(t *testing.T) {
	th := NewThread()
	bobGen := th.Reset("bob")
	carolGen := th.Reset("carol")

	if th.ApplySnapshot(bobGen, []api.Message{msg("1", "me", "bob")}) {
		t.Fatal("stale snapshot applied")
	}
	if th.Len() != 0 {
		t.Fatalf("Len = %d, want 0", th.Len())
	}
	if !th.ApplySnapshot(carolGen, []api.Message{msg("2", "carol", "me")}) {
		t.Fatal("current snapshot rejected")
	}
	if got := ids(th.Messages()); !slices.Equal(got, []string{"2"}) {
		t.Errorf("messages = %v", got)
	}
}

func TestThreadAppendDedupes(t *testing.T) {
	th := NewThread()
	th.Reset("bob")
	if !th.Append(msg("1", "me", "bob")) {
		t.Fatal("first append rejected")
	}
	if th.Append(msg("1", "me", "bob")) {
		t.Fatal("duplicate append accepted")
	}
	if th.Len() != 1 {
		t.Errorf("Len = %d, want 1", th.Len())
	}
}

func TestThreadKeepsEarlyMessagesAcrossSnapshot(t *testing.T) {
	th := NewThread()
	gen := th.Reset("bob")
	th.AcceptLive(msg("3", "bob", "me"))
	th.AcceptLive(msg("4", "bob", "me"))

	th.ApplySnapshot(gen, []api.Message{msg("1", "me", "bob"), msg("3", "bob", "me")})
	if got := ids(th.Messages()); !slices.Equal(got, []string{"1", "3", "4"}) {
		t.Errorf("messages = %v, want [1 3 4]", got)
	}
}

func TestThreadAcceptLive(t *testing.T) {
	tests := []struct {
		name    string
		partner string
		msg     api.Message
		want    bool
	}{
		{"from partner", "bob", msg("1", "bob", "me"), true},
		{"to partner", "bob", msg("2", "me", "bob"), true},
		{"other sender", "bob", msg("3", "carol", "me"), false},
		{"no partner", "", msg("4", "bob", "me"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := NewThread()
			th.Reset(tt.partner)
			if got := th.AcceptLive(tt.msg); got != tt.want {
				t.Errorf("AcceptLive = %v, want %v", got, tt.want)
			}
			wantLen := 0
			if tt.want {
				wantLen = 1
			}
			if th.Len() != wantLen {
				t.Errorf("Len = %d, want %d", th.Len(), wantLen)
			}
		})
	}
}

func TestThreadMessagesIsCopy(t *testing.T) {
	th := NewThread()
	th.Reset("bob")
	th.Append(msg("1", "bob", "me"))
	got := th.Messages()
	got[0].Text = "mutated"
	if th.Messages()[0].Text == "mutated" {
		t.Error("Messages exposed internal slice")
	}
}

func TestPresenceReplaceDropsAbsent(t *testing.T) {
	p := NewPresence()
	p.Replace([]string{"a", "b"})
	p.Replace([]string{"b", "c"})

	if p.IsOnline("a") {
		t.Error("a still online after replacement")
	}
	if !p.IsOnline("b") || !p.IsOnline("c") {
		t.Error("b and c should be online")
	}
	if got := p.Online(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Online = %v", got)
	}
}

func TestPresenceIgnoresEmptyIDs(t *testing.T) {
	p := NewPresence()
	p.Replace([]string{"", "a", "a"})
	if p.Count() != 1 {
		t.Errorf("Count = %d, want 1", p.Count())
	}
	p.Clear()
	if p.Count() != 0 {
		t.Errorf("Count after Clear = %d", p.Count())
	}
}

func waitEvent(t *testing.T, ch <-chan bus.Event) bus.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	return bus.Event{}
}

func TestSyncHandlesLiveEvents(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("live.", 8)
	defer unsub()

	th := NewThread()
	th.Reset("bob")
	pr := NewPresence()
	s := NewSync(th, pr, b, nil)

	s.HandlePresence(live.PresenceUpdate{Online: []string{"bob"}})
	if evt := waitEvent(t, ch); evt.Kind != bus.LivePresence {
		t.Errorf("kind = %q, want %q", evt.Kind, bus.LivePresence)
	}
	if !pr.IsOnline("bob") {
		t.Error("bob not online")
	}

	s.HandleMessage(live.NewMessage{Message: msg("9", "carol", "me")})
	s.HandleMessage(live.NewMessage{Message: msg("10", "bob", "me")})
	evt := waitEvent(t, ch)
	if evt.Kind != bus.LiveMessage {
		t.Fatalf("kind = %q, want %q", evt.Kind, bus.LiveMessage)
	}
	if m, ok := evt.Payload.(api.Message); !ok || m.ID != "10" {
		t.Errorf("payload = %#v", evt.Payload)
	}
	if got := ids(th.Messages()); !slices.Equal(got, []string{"10"}) {
		t.Errorf("thread = %v", got)
	}

	// a duplicate push is neither appended nor announced
	s.HandleMessage(live.NewMessage{Message: msg("10", "bob", "me")})
	s.Closed(nil)
	if evt := waitEvent(t, ch); evt.Kind != bus.LiveClosed {
		t.Errorf("kind = %q, want %q", evt.Kind, bus.LiveClosed)
	}
	if pr.Count() != 0 {
		t.Error("presence not cleared on close")
	}
}
