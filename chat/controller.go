// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

// Config holds the dependencies of a Controller.
type Config struct {
	// Client is the protocol client. Required.
	Client Client

	// Notifier receives success, failure, and new-message notices.
	// If nil, notifications are discarded.
	Notifier Notifier

	// OnChange is called after every state mutation, outside the
	// controller's lock. It must not block.
	OnChange func()

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// State is a snapshot of everything the controller exposes. Slices are
// copies owned by the caller.
type State struct {
	Rooms    []Room
	Invites  []Invite
	Messages []Message

	// ActiveRoom is the zero RoomID while idle.
	ActiveRoom ref.RoomID

	RoomNameDraft string
	InviteDraft   string
	MessageDraft  string
}

// Idle reports whether no room is active.
func (s State) Idle() bool {
	return s.ActiveRoom.IsZero()
}

// Controller is the session synchronizer. Create one with New, call
// Mount once the client is ready, and Close when the view goes away.
type Controller struct {
	client   Client
	notifier Notifier
	onChange func()
	logger   *slog.Logger

	router Router

	// switchMu serializes room switches and Close, so the active room
	// and the router's subscription always change together. It is
	// taken before mu and never on the delivery path.
	switchMu sync.Mutex

	mu     sync.Mutex
	state  State
	closed bool

	// live is the room the router forwards. While loading, its
	// messages wait in pending until the history is in place.
	live    ref.RoomID
	loading bool
	pending []Message

	// seen holds the event IDs already in state.Messages.
	seen map[ref.EventID]struct{}
}

// New creates a Controller in the idle state.
func New(config Config) (*Controller, error) {
	if config.Client == nil {
		return nil, errors.New("chat: Client is required")
	}

	notifier := config.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	onChange := config.OnChange
	if onChange == nil {
		onChange = func() {}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		client:   config.Client,
		notifier: notifier,
		onChange: onChange,
		logger:   logger,
		state:    State{Messages: []Message{}},
	}, nil
}

// Mount populates the room and invite lists from the client.
func (c *Controller) Mount() {
	c.refresh(true)
	c.onChange()
}

// Close disposes the live subscription. Actions that resolve after Close
// do not install a new one.
func (c *Controller) Close() {
	c.switchMu.Lock()
	defer c.switchMu.Unlock()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.router.Deactivate()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.state
	snapshot.Rooms = slices.Clone(c.state.Rooms)
	snapshot.Invites = slices.Clone(c.state.Invites)
	snapshot.Messages = slices.Clone(c.state.Messages)
	return snapshot
}

// SetRoomNameDraft replaces the pending room name for CreateRoom.
func (c *Controller) SetRoomNameDraft(value string) {
	c.setDraft(&c.state.RoomNameDraft, value)
}

// SetInviteDraft replaces the pending invitee for InviteUser.
func (c *Controller) SetInviteDraft(value string) {
	c.setDraft(&c.state.InviteDraft, value)
}

// SetMessageDraft replaces the pending message for SendMessage.
func (c *Controller) SetMessageDraft(value string) {
	c.setDraft(&c.state.MessageDraft, value)
}

func (c *Controller) setDraft(field *string, value string) {
	c.mu.Lock()
	*field = value
	c.mu.Unlock()
	c.onChange()
}

// refresh re-derives the room list, and the invite list when
// withInvites is set, from the client's current room set.
func (c *Controller) refresh(withInvites bool) {
	handles := c.client.Rooms()
	rooms := DeriveRooms(handles)

	var invites []Invite
	if withInvites {
		invites = DeriveInvites(handles)
	}

	c.mu.Lock()
	c.state.Rooms = rooms
	if withInvites {
		c.state.Invites = invites
	}
	c.mu.Unlock()
}

// activate makes roomID the active room and resubscribes the router to
// it. The subscription is installed before loadHistory reads the room's
// buffer, so an event is either in the history, delivered afterwards,
// or both; messages delivered during the load are merged after the
// history, skipping event IDs it already holds. Returns false without
// subscribing if the controller was closed while the action was in
// flight.
func (c *Controller) activate(roomID ref.RoomID, loadHistory func() []Message) bool {
	c.switchMu.Lock()
	defer c.switchMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.live = roomID
	c.loading = true
	c.pending = nil
	c.mu.Unlock()

	c.router.Activate(c.client, roomID, func(message Message) {
		c.appendLive(roomID, message)
	})
	history := loadHistory()

	c.mu.Lock()
	c.seen = make(map[ref.EventID]struct{}, len(history))
	for _, message := range history {
		c.markSeenLocked(message)
	}
	var merged []Message
	for _, message := range c.pending {
		if c.seenLocked(message) {
			continue
		}
		c.markSeenLocked(message)
		history = append(history, message)
		merged = append(merged, message)
	}
	c.pending = nil
	c.loading = false
	c.state.ActiveRoom = roomID
	c.state.Messages = history
	c.mu.Unlock()

	for _, message := range merged {
		c.notifyLive(message)
	}
	return true
}

// appendLive is the router's delivery callback. It runs with the
// router's lock held.
func (c *Controller) appendLive(roomID ref.RoomID, message Message) {
	c.mu.Lock()
	if c.closed || c.live != roomID {
		c.mu.Unlock()
		return
	}
	if c.loading {
		c.pending = append(c.pending, message)
		c.mu.Unlock()
		return
	}
	if c.seenLocked(message) {
		c.mu.Unlock()
		return
	}
	c.markSeenLocked(message)
	c.state.Messages = append(c.state.Messages, message)
	c.mu.Unlock()

	c.notifyLive(message)
	c.onChange()
}

func (c *Controller) seenLocked(message Message) bool {
	if message.EventID.IsZero() {
		return false
	}
	_, ok := c.seen[message.EventID]
	return ok
}

func (c *Controller) markSeenLocked(message Message) {
	if !message.EventID.IsZero() {
		c.seen[message.EventID] = struct{}{}
	}
}

func (c *Controller) notifyLive(message Message) {
	c.notify(SeverityInfo, "New message from "+message.Sender.String()+": "+message.Content)
}

func (c *Controller) notify(severity Severity, text string) {
	c.notifier.Notify(Notification{Severity: severity, Text: text})
}
