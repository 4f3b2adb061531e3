// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// fakeRoom is an in-memory RoomHandle.
type fakeRoom struct {
	mu         sync.Mutex
	id         ref.RoomID
	name       string
	membership string
	timeline   []messaging.Event

	// beforeTimeline runs at the start of every Timeline call, standing
	// in for a sync batch that lands while history is being read.
	beforeTimeline func()
}

func (r *fakeRoom) ID() ref.RoomID { return r.id }

func (r *fakeRoom) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

func (r *fakeRoom) Membership() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membership
}

func (r *fakeRoom) Timeline() []messaging.Event {
	if r.beforeTimeline != nil {
		r.beforeTimeline()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.timeline)
}

type inviteCall struct {
	roomID ref.RoomID
	userID ref.UserID
}

type sendCall struct {
	roomID ref.RoomID
	body   string
}

// fakeClient is an in-memory Client. Errors are injected per operation;
// joinGates make JoinRoom block on a per-room channel.
type fakeClient struct {
	mu sync.Mutex

	rooms     []*fakeRoom
	listeners map[int]func(messaging.Event, RoomHandle)
	nextID    int

	subscribeCalls int
	createCalls    []string
	joinCalls      []ref.RoomID
	inviteCalls    []inviteCall
	sendCalls      []sendCall

	createErr error
	joinErr   error
	inviteErr error
	sendErr   error

	joinGates map[ref.RoomID]chan struct{}
}

func newFakeClient(rooms ...*fakeRoom) *fakeClient {
	return &fakeClient{
		rooms:     rooms,
		listeners: make(map[int]func(messaging.Event, RoomHandle)),
		joinGates: make(map[ref.RoomID]chan struct{}),
	}
}

func (f *fakeClient) Rooms() []RoomHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	handles := make([]RoomHandle, len(f.rooms))
	for index, room := range f.rooms {
		handles[index] = room
	}
	return handles
}

func (f *fakeClient) room(roomID ref.RoomID) *fakeRoom {
	for _, room := range f.rooms {
		if room.id == roomID {
			return room
		}
	}
	return nil
}

func (f *fakeClient) JoinRoom(ctx context.Context, roomID ref.RoomID) (RoomHandle, error) {
	f.mu.Lock()
	f.joinCalls = append(f.joinCalls, roomID)
	gate := f.joinGates[roomID]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	room := f.room(roomID)
	if room == nil {
		return nil, fmt.Errorf("room %s not found", roomID)
	}
	room.mu.Lock()
	room.membership = MembershipJoin
	room.mu.Unlock()
	return room, nil
}

func (f *fakeClient) CreateRoom(ctx context.Context, name string) (ref.RoomID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, name)
	if f.createErr != nil {
		return ref.RoomID{}, f.createErr
	}
	roomID := ref.MustParseRoomID(fmt.Sprintf("!created%d:example.org", len(f.createCalls)))
	f.rooms = append(f.rooms, &fakeRoom{id: roomID, name: name, membership: MembershipJoin})
	return roomID, nil
}

func (f *fakeClient) Invite(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inviteCalls = append(f.inviteCalls, inviteCall{roomID: roomID, userID: userID})
	return f.inviteErr
}

func (f *fakeClient) SendText(ctx context.Context, roomID ref.RoomID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, sendCall{roomID: roomID, body: body})
	return f.sendErr
}

func (f *fakeClient) SubscribeTimeline(handler func(messaging.Event, RoomHandle)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribeCalls++
	id := f.nextID
	f.nextID++
	f.listeners[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// handlers snapshots the live listeners the way a real client would
// before invoking them unlocked.
func (f *fakeClient) handlers() []func(messaging.Event, RoomHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handlers := make([]func(messaging.Event, RoomHandle), 0, len(f.listeners))
	for _, handler := range f.listeners {
		handlers = append(handlers, handler)
	}
	return handlers
}

// deliver appends event to the room's buffer and fans it out to every
// listener.
func (f *fakeClient) deliver(roomID ref.RoomID, event messaging.Event) {
	f.mu.Lock()
	room := f.room(roomID)
	f.mu.Unlock()
	if room == nil {
		room = &fakeRoom{id: roomID}
	}

	event.RoomID = roomID
	room.mu.Lock()
	room.timeline = append(room.timeline, event)
	room.mu.Unlock()

	f.fanOut(room, event)
}

// dispatch hands event to every listener without touching the room's
// buffer, as a sync loop does for an event it buffered earlier.
func (f *fakeClient) dispatch(roomID ref.RoomID, event messaging.Event) {
	f.mu.Lock()
	room := f.room(roomID)
	f.mu.Unlock()
	if room == nil {
		room = &fakeRoom{id: roomID}
	}
	event.RoomID = roomID
	f.fanOut(room, event)
}

func (f *fakeClient) fanOut(room *fakeRoom, event messaging.Event) {
	for _, handler := range f.handlers() {
		handler(event, room)
	}
}

func (f *fakeClient) liveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *fakeClient) gateJoin(roomID ref.RoomID) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.joinGates[roomID] = gate
	return gate
}

// recorder collects notifications.
type recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *recorder) Notify(notification Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notifications)
}

func textMessage(sender, body string) messaging.Event {
	return messaging.Event{
		Type:    ref.EventTypeRoomMessage,
		Sender:  ref.MustParseUserID(sender),
		Content: map[string]any{"msgtype": "m.text", "body": body},
	}
}

func nameEvent(sender, name string) messaging.Event {
	stateKey := ""
	return messaging.Event{
		Type:     ref.EventTypeRoomName,
		Sender:   ref.MustParseUserID(sender),
		Content:  map[string]any{"name": name},
		StateKey: &stateKey,
	}
}

func textMessageWithID(eventID, sender, body string) messaging.Event {
	event := textMessage(sender, body)
	event.EventID = ref.MustParseEventID(eventID)
	return event
}
