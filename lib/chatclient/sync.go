// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/bureau-foundation/bureau-chat/chat"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// InitialSync performs the first /sync with no since token and builds
// the room set from it. Events in this response are history: they fill
// the room buffers but are not delivered to timeline handlers.
func (c *Client) InitialSync(ctx context.Context) error {
	response, err := c.session.Sync(ctx, messaging.SyncOptions{
		Filter: c.filter,
	})
	if err != nil {
		return fmt.Errorf("chatclient: initial sync: %w", err)
	}

	c.apply(response)

	c.mu.Lock()
	c.since = response.NextBatch
	roomCount := len(c.order)
	c.mu.Unlock()

	c.logger.Info("initial sync complete", "rooms", roomCount)
	return nil
}

// Run long-polls /sync until ctx is cancelled, applying each response
// and delivering new timeline events to subscribers. Transient errors
// are retried with exponential backoff from one second up to the
// configured maximum.
func (c *Client) Run(ctx context.Context) {
	timeoutMillis := int(c.syncTimeout / time.Millisecond)
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		since := c.since
		c.mu.Unlock()

		response, err := c.session.Sync(ctx, messaging.SyncOptions{
			Since:      since,
			Timeout:    timeoutMillis,
			SetTimeout: true,
			Filter:     c.filter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("sync failed, retrying", "error", err, "backoff", backoff)
			if closer, ok := c.session.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(backoff):
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}

		backoff = time.Second
		deliveries := c.apply(response)

		c.mu.Lock()
		c.since = response.NextBatch
		c.mu.Unlock()

		c.dispatch(deliveries)
	}
}

type delivery struct {
	event messaging.Event
	room  *Room
}

// apply folds one sync response into the room set and returns the new
// timeline events in room order then timeline order. Rooms within a
// section are visited sorted by ID so the first-seen order is
// deterministic for a given response.
func (c *Client) apply(response *messaging.SyncResponse) []delivery {
	var deliveries []delivery

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, roomID := range sortedRoomIDs(response.Rooms.Join) {
		section := response.Rooms.Join[roomID]
		room := c.ensureRoomLocked(roomID)
		room.setMembership(chat.MembershipJoin)
		room.applyState(section.State.Events)

		events := slices.Clone(section.Timeline.Events)
		for index := range events {
			events[index].RoomID = roomID
		}
		room.appendTimeline(events, section.Timeline.Limited)
		for _, event := range events {
			deliveries = append(deliveries, delivery{event: event, room: room})
		}
	}

	for _, roomID := range sortedRoomIDs(response.Rooms.Invite) {
		room := c.ensureRoomLocked(roomID)
		room.setMembership(chat.MembershipInvite)
		room.applyState(response.Rooms.Invite[roomID].InviteState.Events)
	}

	for _, roomID := range sortedRoomIDs(response.Rooms.Leave) {
		if room, ok := c.rooms[roomID]; ok {
			room.setMembership("leave")
		}
	}

	return deliveries
}

// dispatch snapshots the handler set per event, so a handler disposed
// partway through a batch misses the rest of it.
func (c *Client) dispatch(deliveries []delivery) {
	for _, delivered := range deliveries {
		for _, handler := range c.snapshotHandlers() {
			handler(delivered.event, delivered.room)
		}
	}
}

func sortedRoomIDs[V any](rooms map[ref.RoomID]V) []ref.RoomID {
	ids := lo.Keys(rooms)
	slices.SortFunc(ids, func(a, b ref.RoomID) int {
		return strings.Compare(a.String(), b.String())
	})
	return ids
}
