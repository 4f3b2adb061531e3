// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"github.com/samber/lo"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

// UnnamedRoom is shown for rooms without a display name.
const UnnamedRoom = "Unnamed Room"

// Room is a display record for one room the account can see.
type Room struct {
	ID   ref.RoomID
	Name string
}

// Invite is a display record for a room the account is invited to.
type Invite struct {
	ID   ref.RoomID
	Name string
}

// DeriveRooms projects every handle, in client order, into a Room.
func DeriveRooms(rooms []RoomHandle) []Room {
	return lo.Map(rooms, func(room RoomHandle, _ int) Room {
		return Room{ID: room.ID(), Name: displayName(room)}
	})
}

// DeriveInvites returns the handles whose membership is "invite", in
// client order.
func DeriveInvites(rooms []RoomHandle) []Invite {
	return lo.FilterMap(rooms, func(room RoomHandle, _ int) (Invite, bool) {
		if room.Membership() != MembershipInvite {
			return Invite{}, false
		}
		return Invite{ID: room.ID(), Name: displayName(room)}, true
	})
}

func displayName(room RoomHandle) string {
	if name := room.Name(); name != "" {
		return name
	}
	return UnnamedRoom
}
