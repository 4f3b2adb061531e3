// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"sync"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Router owns at most one live timeline subscription. The zero value is
// inactive and ready to use.
//
// Lock order is Router before the client: Activate and Deactivate call
// into the client while holding the router's mutex, and accepted
// messages are handed to onMessage with the mutex held.
type Router struct {
	mu         sync.Mutex
	dispose    func()
	roomID     ref.RoomID
	generation uint64
	onMessage  func(Message)
}

// Activate subscribes to client's timeline stream and forwards every
// m.room.message event in roomID to onMessage. Any existing subscription
// is disposed first.
func (r *Router) Activate(client Client, roomID ref.RoomID, onMessage func(Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disposeLocked()

	r.generation++
	generation := r.generation
	r.roomID = roomID
	r.onMessage = onMessage
	r.dispose = client.SubscribeTimeline(func(event messaging.Event, room RoomHandle) {
		if event.Type != ref.EventTypeRoomMessage || room.ID() != roomID {
			return
		}
		r.deliver(generation, messageFromEvent(event))
	})
}

// Deactivate disposes the current subscription, if any.
func (r *Router) Deactivate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposeLocked()
}

// Active returns the subscribed room and whether a subscription exists.
func (r *Router) Active() (ref.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roomID, r.dispose != nil
}

func (r *Router) disposeLocked() {
	if r.dispose == nil {
		return
	}
	r.dispose()
	r.dispose = nil
	r.onMessage = nil
	r.roomID = ref.RoomID{}
}

// deliver drops messages from a subscription that has since been
// replaced or disposed. The client may have snapshotted the handler
// before dispose ran.
func (r *Router) deliver(generation uint64, message Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if generation != r.generation || r.onMessage == nil {
		return
	}
	r.onMessage(message)
}
