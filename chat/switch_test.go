// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Two joins resolving at the same moment must leave the active room and
// the live subscription on the same room, whichever wins.
func TestConcurrentJoinsKeepSubscriptionOnActiveRoom(t *testing.T) {
	for iteration := range 300 {
		h := newHarness(t,
			&fakeRoom{id: roomGeneral, membership: MembershipJoin},
			&fakeRoom{id: roomRandom, membership: MembershipJoin},
		)

		var wg sync.WaitGroup
		for _, roomID := range []ref.RoomID{roomGeneral, roomRandom} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.controller.JoinRoom(context.Background(), roomID)
			}()
		}
		wg.Wait()

		active := h.controller.State().ActiveRoom
		subscribed, ok := h.controller.router.Active()
		if !ok || subscribed != active {
			t.Fatalf("iteration %d: active = %s, subscribed = %s (ok=%v)", iteration, active, subscribed, ok)
		}
		if live := h.client.liveSubscriptions(); live != 1 {
			t.Fatalf("iteration %d: live subscriptions = %d, want 1", iteration, live)
		}

		h.client.deliver(active, textMessage("@b:example.org", "hello"))
		if messages := h.controller.State().Messages; len(messages) != 1 {
			t.Fatalf("iteration %d: messages = %v, want the live message", iteration, messages)
		}
		h.controller.Close()
	}
}

// A sync loop buffers an event before it dispatches it. When a join reads
// the buffer in between, the later delivery must not add it again.
func TestBufferedEventDeliveredAfterJoinAppearsOnce(t *testing.T) {
	buffered := textMessageWithID("$one", "@b:example.org", "one")
	h := newHarness(t, &fakeRoom{
		id:         roomGeneral,
		membership: MembershipJoin,
		timeline:   []messaging.Event{buffered},
	})

	h.controller.JoinRoom(context.Background(), roomGeneral)
	h.client.dispatch(roomGeneral, buffered)
	h.client.dispatch(roomGeneral, textMessageWithID("$two", "@b:example.org", "two"))

	var contents []string
	for _, message := range h.controller.State().Messages {
		contents = append(contents, message.Content)
	}
	if !slices.Equal(contents, []string{"one", "two"}) {
		t.Errorf("messages = %v, want [one two]", contents)
	}
	h.requireNotes(t,
		success("Successfully joined room: !general:example.org"),
		info("New message from @b:example.org: two"),
	)
}

// Events delivered while the history is being read are merged after it:
// one that also reached the buffer appears once, one that did not is
// still kept.
func TestDeliveryDuringHistoryLoadIsMerged(t *testing.T) {
	room := &fakeRoom{
		id:         roomGeneral,
		membership: MembershipJoin,
		timeline:   []messaging.Event{textMessageWithID("$zero", "@a:example.org", "zero")},
	}
	h := newHarness(t, room)

	var once sync.Once
	room.beforeTimeline = func() {
		once.Do(func() {
			h.client.deliver(roomGeneral, textMessageWithID("$one", "@b:example.org", "one"))
			h.client.dispatch(roomGeneral, textMessageWithID("$two", "@b:example.org", "two"))
		})
	}

	h.controller.JoinRoom(context.Background(), roomGeneral)

	var contents []string
	for _, message := range h.controller.State().Messages {
		contents = append(contents, message.Content)
	}
	if !slices.Equal(contents, []string{"zero", "one", "two"}) {
		t.Errorf("messages = %v, want [zero one two]", contents)
	}
	h.requireNotes(t,
		info("New message from @b:example.org: one"),
		info("New message from @b:example.org: two"),
		success("Successfully joined room: !general:example.org"),
	)
}

func TestActionsResolvingAfterCloseReportNothing(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		h := newHarness(t, &fakeRoom{id: roomGeneral, membership: MembershipJoin})
		gate := h.client.gateJoin(roomGeneral)

		done := make(chan struct{})
		go func() {
			defer close(done)
			h.controller.JoinRoom(context.Background(), roomGeneral)
		}()
		h.controller.Close()
		changes := h.changes.Load()
		close(gate)
		<-done

		if !h.controller.State().Idle() {
			t.Errorf("active = %s after Close", h.controller.State().ActiveRoom)
		}
		if got := h.changes.Load(); got != changes {
			t.Errorf("OnChange fired %d times after Close", got-changes)
		}
		if live := h.client.liveSubscriptions(); live != 0 {
			t.Errorf("live subscriptions = %d after Close", live)
		}
		h.requireNotes(t)
	})

	t.Run("create", func(t *testing.T) {
		h := newHarness(t)
		h.controller.SetRoomNameDraft("Planning")
		h.controller.Close()
		changes := h.changes.Load()

		h.controller.CreateRoom(context.Background())

		if got := h.changes.Load(); got != changes {
			t.Errorf("OnChange fired %d times after Close", got-changes)
		}
		if !h.controller.State().Idle() {
			t.Errorf("active = %s after Close", h.controller.State().ActiveRoom)
		}
		h.requireNotes(t)
	})
}
