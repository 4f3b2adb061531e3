// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatclient is the /sync-backed Matrix client that the chat
// controller drives.
//
// [Client] keeps one [Room] per room the account can see, in first-seen
// order. Each Room carries the account's membership, a display name
// taken from m.room.name state, and a bounded buffer of recent timeline
// events. [Client.InitialSync] fills the rooms from a full /sync;
// [Client.Run] then long-polls for changes, retrying with exponential
// backoff, and hands each new timeline event to every handler registered
// through [Client.SubscribeTimeline].
//
// Handlers run on the sync goroutine after the client's lock has been
// released, so a handler may call back into the Client.
//
// JoinRoom seeds the joined room's buffer from /messages so that a room
// joined mid-session has history to show.
package chatclient
