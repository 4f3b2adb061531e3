// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/bureau-chat/chat"
	"github.com/bureau-foundation/bureau-chat/lib/clock"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Config holds the dependencies and tuning of a Client.
type Config struct {
	// Session is the authenticated Matrix session. Required. The
	// Client does not close it.
	Session messaging.Session

	// Clock drives sync retry backoff. If nil, clock.Real() is used.
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// SyncTimeout is the /sync long-poll hold time. Default: 30s.
	SyncTimeout time.Duration

	// MaxBackoff caps the delay between failed syncs. Default: 30s.
	MaxBackoff time.Duration

	// TimelineLimit bounds each room's event buffer and the events per
	// room requested from /sync. Default: 50.
	TimelineLimit int

	// HistoryLimit is the number of events fetched from /messages when
	// joining a room. Default: 50.
	HistoryLimit int
}

// Client implements chat.Client on top of a messaging.Session.
type Client struct {
	session       messaging.Session
	clock         clock.Clock
	logger        *slog.Logger
	syncTimeout   time.Duration
	maxBackoff    time.Duration
	timelineLimit int
	historyLimit  int
	filter        string

	mu          sync.Mutex
	rooms       map[ref.RoomID]*Room
	order       []ref.RoomID
	since       string
	handlers    map[uint64]timelineHandler
	nextHandler uint64
}

type timelineHandler func(event messaging.Event, room chat.RoomHandle)

var _ chat.Client = (*Client)(nil)

// New creates a Client. It performs no I/O; call InitialSync before
// handing the client to a controller, then Run.
func New(config Config) (*Client, error) {
	if config.Session == nil {
		return nil, errors.New("chatclient: Session is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	syncTimeout := config.SyncTimeout
	if syncTimeout <= 0 {
		syncTimeout = 30 * time.Second
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	timelineLimit := config.TimelineLimit
	if timelineLimit <= 0 {
		timelineLimit = 50
	}
	historyLimit := config.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 50
	}

	return &Client{
		session:       config.Session,
		clock:         clk,
		logger:        logger,
		syncTimeout:   syncTimeout,
		maxBackoff:    maxBackoff,
		timelineLimit: timelineLimit,
		historyLimit:  historyLimit,
		filter:        messaging.BuildInlineFilter(messaging.SyncFilter{TimelineLimit: timelineLimit}),
		rooms:         make(map[ref.RoomID]*Room),
		handlers:      make(map[uint64]timelineHandler),
	}, nil
}

// Rooms returns every known room in first-seen order.
func (c *Client) Rooms() []chat.RoomHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	handles := make([]chat.RoomHandle, len(c.order))
	for index, roomID := range c.order {
		handles[index] = c.rooms[roomID]
	}
	return handles
}

// JoinRoom joins roomID and seeds its buffer from recent history. A
// failure to fetch history is logged; the join still succeeds. Events a
// concurrent sync buffers during the fetch are kept after the history,
// so a subscriber installed after JoinRoom returns finds them there.
func (c *Client) JoinRoom(ctx context.Context, roomID ref.RoomID) (chat.RoomHandle, error) {
	joinedID, err := c.session.JoinRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("chatclient: joining %s: %w", roomID, err)
	}
	if joinedID.IsZero() {
		joinedID = roomID
	}

	room := c.ensureRoom(joinedID)
	room.setMembership(chat.MembershipJoin)

	// Sync batches applied while /messages is in flight are kept on top
	// of the fetched history.
	mark := room.appendedCount()
	response, err := c.session.RoomMessages(ctx, joinedID, messaging.RoomMessagesOptions{Limit: c.historyLimit})
	if err != nil {
		c.logger.Warn("loading room history failed", "room_id", joinedID, "error", err)
		return room, nil
	}

	// /messages with dir=b returns newest first.
	history := slices.Clone(response.Chunk)
	slices.Reverse(history)
	for index := range history {
		history[index].RoomID = joinedID
	}
	room.applyState(response.State)
	room.replaceTimeline(history, mark)

	return room, nil
}

// CreateRoom creates a private room with the given name. The room is
// known locally as soon as this returns, before the next sync reports it.
func (c *Client) CreateRoom(ctx context.Context, name string) (ref.RoomID, error) {
	response, err := c.session.CreateRoom(ctx, messaging.CreateRoomRequest{
		Name:   name,
		Preset: "private_chat",
	})
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("chatclient: creating room %q: %w", name, err)
	}

	room := c.ensureRoom(response.RoomID)
	room.setName(name)
	room.setMembership(chat.MembershipJoin)
	return response.RoomID, nil
}

// Invite invites userID to roomID.
func (c *Client) Invite(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	if err := c.session.InviteUser(ctx, roomID, userID); err != nil {
		return fmt.Errorf("chatclient: %w", err)
	}
	return nil
}

// SendText sends body as an m.text message.
func (c *Client) SendText(ctx context.Context, roomID ref.RoomID, body string) error {
	if _, err := c.session.SendMessage(ctx, roomID, messaging.NewTextMessage(body)); err != nil {
		return fmt.Errorf("chatclient: %w", err)
	}
	return nil
}

// SubscribeTimeline registers handler for new timeline events from the
// sync loop. The returned dispose func is idempotent.
func (c *Client) SubscribeTimeline(handler func(event messaging.Event, room chat.RoomHandle)) func() {
	c.mu.Lock()
	id := c.nextHandler
	c.nextHandler++
	c.handlers[id] = handler
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.handlers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) ensureRoom(roomID ref.RoomID) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureRoomLocked(roomID)
}

func (c *Client) ensureRoomLocked(roomID ref.RoomID) *Room {
	if room, ok := c.rooms[roomID]; ok {
		return room
	}
	room := newRoom(roomID, c.timelineLimit)
	c.rooms[roomID] = room
	c.order = append(c.order, roomID)
	return room
}

// snapshotHandlers copies the handler set so it can be invoked without
// the lock.
func (c *Client) snapshotHandlers() []timelineHandler {
	c.mu.Lock()
	defer c.mu.Unlock()

	handlers := make([]timelineHandler, 0, len(c.handlers))
	ids := make([]uint64, 0, len(c.handlers))
	for id := range c.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, c.handlers[id])
	}
	return handlers
}
