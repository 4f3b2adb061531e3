// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"strings"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

// CreateRoom creates a room named by the trimmed room-name draft and
// makes it active with an empty history. Does nothing when the trimmed
// draft is empty.
func (c *Controller) CreateRoom(ctx context.Context) {
	c.mu.Lock()
	name := strings.TrimSpace(c.state.RoomNameDraft)
	c.mu.Unlock()
	if name == "" {
		return
	}

	roomID, err := c.client.CreateRoom(ctx, name)
	if err != nil {
		c.logger.Debug("create room failed", "name", name, "error", err)
		c.notify(SeverityFailure, textCreateFailure)
		return
	}

	if !c.activate(roomID, func() []Message { return []Message{} }) {
		return
	}
	c.refresh(false)

	c.mu.Lock()
	c.state.RoomNameDraft = ""
	c.mu.Unlock()

	c.notify(SeveritySuccess, textCreateSuccess+roomID.String())
	c.onChange()
}

// JoinRoom joins roomID, replaces the message history with the room's
// buffered timeline, and makes it active. Does nothing for a zero ID,
// and reports nothing if the controller closed while the join was in
// flight.
func (c *Controller) JoinRoom(ctx context.Context, roomID ref.RoomID) {
	if roomID.IsZero() {
		return
	}

	room, err := c.client.JoinRoom(ctx, roomID)
	if err != nil {
		c.logger.Debug("join room failed", "room_id", roomID, "error", err)
		c.notify(SeverityFailure, textJoinFailure)
		return
	}

	if !c.activate(roomID, func() []Message { return LoadHistory(room) }) {
		return
	}
	c.refresh(false)

	c.notify(SeveritySuccess, textJoinSuccess+roomID.String())
	c.onChange()
}

// AcceptInvite joins an invited room and refreshes both lists. The
// active room does not change.
func (c *Controller) AcceptInvite(ctx context.Context, roomID ref.RoomID) {
	if roomID.IsZero() {
		return
	}

	if _, err := c.client.JoinRoom(ctx, roomID); err != nil {
		c.logger.Debug("accept invite failed", "room_id", roomID, "error", err)
		c.notify(SeverityFailure, textAcceptFailure)
		return
	}

	c.refresh(true)

	c.notify(SeveritySuccess, textAcceptSuccess+roomID.String())
	c.onChange()
}

// InviteUser invites the user named by the trimmed invite draft to the
// active room. Does nothing while idle or when the trimmed draft is
// empty. A draft that is not a valid user ID fails like a rejected
// invite.
func (c *Controller) InviteUser(ctx context.Context) {
	c.mu.Lock()
	roomID := c.state.ActiveRoom
	invitee := strings.TrimSpace(c.state.InviteDraft)
	c.mu.Unlock()
	if roomID.IsZero() || invitee == "" {
		return
	}

	userID, err := ref.ParseUserID(invitee)
	if err == nil {
		err = c.client.Invite(ctx, roomID, userID)
	}
	if err != nil {
		c.logger.Debug("invite failed", "room_id", roomID, "user_id", invitee, "error", err)
		c.notify(SeverityFailure, textInviteFailure)
		return
	}

	c.mu.Lock()
	c.state.InviteDraft = ""
	c.mu.Unlock()

	c.notify(SeveritySuccess, "User "+userID.String()+" invited to room.")
	c.onChange()
}

// SendMessage sends the message draft, unmodified, to the active room.
// Does nothing while idle or when the draft is blank. The sent message
// appears in the history only when the client delivers it back.
func (c *Controller) SendMessage(ctx context.Context) {
	c.mu.Lock()
	roomID := c.state.ActiveRoom
	body := c.state.MessageDraft
	c.mu.Unlock()
	if roomID.IsZero() || strings.TrimSpace(body) == "" {
		return
	}

	if err := c.client.SendText(ctx, roomID, body); err != nil {
		c.logger.Debug("send message failed", "room_id", roomID, "error", err)
		c.notify(SeverityFailure, textSendFailure)
		return
	}

	c.mu.Lock()
	c.state.MessageDraft = ""
	c.mu.Unlock()

	c.notify(SeveritySuccess, textSendSuccess)
	c.onChange()
}
