// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"slices"
	"sync"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Room is the client's view of one room. It implements chat.RoomHandle.
type Room struct {
	id    ref.RoomID
	limit int

	mu         sync.Mutex
	name       string
	membership string
	timeline   []messaging.Event

	// appended counts events ever added by sync, so a history fetch
	// can tell which buffered events arrived while it was in flight.
	appended uint64
}

func newRoom(id ref.RoomID, limit int) *Room {
	return &Room{id: id, limit: limit}
}

// ID returns the room ID.
func (r *Room) ID() ref.RoomID { return r.id }

// Name returns the room's m.room.name, or "" if it has none.
func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// Membership returns "join", "invite", "leave", or "" when unknown.
func (r *Room) Membership() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membership
}

// Timeline returns a copy of the buffered events, oldest first.
func (r *Room) Timeline() []messaging.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.timeline)
}

func (r *Room) setMembership(membership string) {
	r.mu.Lock()
	r.membership = membership
	r.mu.Unlock()
}

func (r *Room) setName(name string) {
	r.mu.Lock()
	r.name = name
	r.mu.Unlock()
}

// applyState picks up the room name from state events. Stripped invite
// state is handled the same way.
func (r *Room) applyState(events []messaging.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyStateLocked(events)
}

func (r *Room) applyStateLocked(events []messaging.Event) {
	for _, event := range events {
		if event.IsState() && event.Type == ref.EventTypeRoomName && *event.StateKey == "" {
			r.name = event.ContentString("name")
		}
	}
}

// appendTimeline adds events to the buffer, dropping the oldest beyond
// the limit. A limited sync section means events were skipped, so the
// buffer restarts from this batch.
func (r *Room) appendTimeline(events []messaging.Event, limited bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limited {
		r.timeline = nil
	}
	r.applyStateLocked(events)
	r.timeline = append(r.timeline, events...)
	r.appended += uint64(len(events))
	r.trimLocked()
}

func (r *Room) appendedCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appended
}

// replaceTimeline swaps the buffer for history, which must be oldest
// first. Events sync appended after mark stay at the end unless history
// already holds their event ID.
func (r *Room) replaceTimeline(history []messaging.Event, mark uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	newer := min(int(r.appended-mark), len(r.timeline))
	known := make(map[ref.EventID]struct{}, len(history))
	for _, event := range history {
		if !event.EventID.IsZero() {
			known[event.EventID] = struct{}{}
		}
	}

	merged := slices.Clone(history)
	for _, event := range r.timeline[len(r.timeline)-newer:] {
		if _, ok := known[event.EventID]; ok && !event.EventID.IsZero() {
			continue
		}
		merged = append(merged, event)
	}

	r.applyStateLocked(history)
	r.timeline = merged
	r.trimLocked()
}

func (r *Room) trimLocked() {
	if r.limit > 0 && len(r.timeline) > r.limit {
		r.timeline = slices.Clone(r.timeline[len(r.timeline)-r.limit:])
	}
}
