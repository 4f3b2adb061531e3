// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat keeps a local view of a Matrix account consistent with an
// asynchronously updating protocol client, and mediates user actions
// back into that client.
//
// The view has four parts: the rooms the account can see, the rooms it
// has been invited to, the message history of the one active room, and
// the pending text inputs (room-name, invitee, and message drafts).
// [Controller] owns all of it; [Controller.State] returns a copy for
// rendering and [Config].OnChange fires after every mutation.
//
// The building blocks are usable on their own:
//
//   - [DeriveRooms] and [DeriveInvites] project the client's room set
//     into display records. They are pure and run on every refresh;
//     nothing is patched incrementally.
//   - [LoadHistory] turns a room's timeline buffer into messages.
//   - [Router] holds at most one live timeline subscription, scoped to a
//     single room, and disposes the previous one before installing the
//     next.
//
// # Actions
//
// CreateRoom, JoinRoom, AcceptInvite, InviteUser, and SendMessage block
// until the client call resolves, then refresh the derived state. None
// of them update state optimistically. A failed call is logged at debug
// level, reported through the [Notifier], and otherwise swallowed: no
// state is rolled back and no error reaches the caller. An action whose
// precondition is unmet (an empty draft, no active room) does nothing.
//
// # Concurrency
//
// The controller's mutex is never held across a client call. Two joins
// in flight at once therefore resolve in completion order and the later
// one wins. Live events arrive on the client's delivery goroutine; the
// router and the controller both check that an event still belongs to
// the active subscription before appending, so a handler that was
// already running when its subscription was disposed cannot leak a
// message into another room's history.
//
// There is no transition from an active room back to idle. Leaving a
// room is not modeled.
package chat
