// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"github.com/samber/lo"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// Message is one chat message in the active room.
type Message struct {
	// EventID identifies the event the message came from. It is zero
	// when the client supplied no ID, and such messages are never
	// treated as duplicates.
	EventID ref.EventID

	Sender  ref.UserID
	Content string
}

// LoadHistory returns the m.room.message events in room's timeline
// buffer, in buffer order. Other event types are skipped. The result is
// never nil.
func LoadHistory(room RoomHandle) []Message {
	return lo.FilterMap(room.Timeline(), func(event messaging.Event, _ int) (Message, bool) {
		if event.Type != ref.EventTypeRoomMessage {
			return Message{}, false
		}
		return messageFromEvent(event), true
	})
}

func messageFromEvent(event messaging.Event) Message {
	return Message{
		EventID: event.EventID,
		Sender:  event.Sender,
		Content: event.ContentString("body"),
	}
}
