// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Membership values reported by RoomHandle.Membership. Any other value
// (such as "leave") passes through untouched.
const (
	MembershipJoin   = "join"
	MembershipInvite = "invite"
)

// RoomHandle is the client's live view of one room.
type RoomHandle interface {
	ID() ref.RoomID

	// Name is the room's display name, or "" when it has none.
	Name() string

	// Membership is the account's membership in the room.
	Membership() string

	// Timeline returns a copy of the room's buffered events, oldest
	// first.
	Timeline() []messaging.Event
}

// Client is the protocol client the controller drives. Implementations
// must be safe for concurrent use and must not hold internal locks while
// invoking timeline handlers.
type Client interface {
	// Rooms returns every room the client knows, in a stable order.
	Rooms() []RoomHandle

	// JoinRoom joins (or accepts an invite to) a room and returns its
	// handle once the membership is in effect.
	JoinRoom(ctx context.Context, roomID ref.RoomID) (RoomHandle, error)

	// CreateRoom creates a named room and returns its ID.
	CreateRoom(ctx context.Context, name string) (ref.RoomID, error)

	// Invite invites a user to a room.
	Invite(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error

	// SendText sends an m.room.message with msgtype m.text.
	SendText(ctx context.Context, roomID ref.RoomID, body string) error

	// SubscribeTimeline registers handler for every new timeline event
	// in any room. Calling dispose stops delivery; it is idempotent.
	SubscribeTimeline(handler func(event messaging.Event, room RoomHandle)) (dispose func())
}
