// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"testing"

	"github.com/bureau-foundation/bureau-chat/messaging"
)

func TestRoomNameOnlyFromStateEvents(t *testing.T) {
	timelineName := roomName("Timeline")
	timelineName.StateKey = nil

	otherKey := roomName("Keyed")
	key := "extra"
	otherKey.StateKey = &key

	tests := []struct {
		name   string
		event  messaging.Event
		expect string
	}{
		{"state event with empty key", roomName("Annex"), "Annex"},
		{"name without state key", timelineName, "General"},
		{"name with non-empty state key", otherKey, "General"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			room := newRoom(roomAnnex, 10)
			room.setName("General")
			room.appendTimeline([]messaging.Event{test.event}, false)
			if got := room.Name(); got != test.expect {
				t.Errorf("Name() = %q, want %q", got, test.expect)
			}
		})
	}
}
