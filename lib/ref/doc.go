// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifiers for
// the chat client: room IDs, user IDs, event IDs, and event types.
//
// Room, user, and event IDs are validated at the boundary where they
// enter the program (homeserver responses, form input, configuration)
// and passed through as value types afterwards. The zero value of each
// type is "unset"; use IsZero to check.
//
// JSON marshaling uses the canonical Matrix string form via
// encoding.TextMarshaler, so the types can be used directly as struct
// fields and map keys in /sync responses.
package ref
