// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType identifies a Matrix event type. It is a named string rather
// than a struct wrapper: event types are opaque and need no validation,
// the type only keeps them from being mixed up with other strings.
type EventType string

// Matrix event types the chat client reads or writes.
const (
	EventTypeRoomMessage EventType = "m.room.message"
	EventTypeRoomName    EventType = "m.room.name"
	EventTypeRoomMember  EventType = "m.room.member"
	EventTypeRoomCreate  EventType = "m.room.create"
)

// String returns the event type string.
func (t EventType) String() string { return string(t) }
