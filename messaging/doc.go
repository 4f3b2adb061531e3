// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the subset of the Matrix client-server API that
// a chat client needs: login, room creation, joining, inviting, sending
// messages, paginated room history, and /sync long-polling.
//
// [Client] is unauthenticated. It holds the homeserver URL and HTTP
// transport and produces [DirectSession] values through [Client.Login] or
// [Client.SessionFromToken]. A DirectSession keeps its access token in a
// secret.Buffer (mmap-backed, locked against swap, excluded from core
// dumps); callers must Close it.
//
// [Session] is the interface consumers depend on, so tests can substitute
// an in-memory fake for a live homeserver.
//
// Homeserver errors are returned as [*MatrixError] carrying the Matrix
// error code and HTTP status. [IsMatrixError] tests for a specific code.
// Request URLs are built by concatenation with url.PathEscape on each
// path segment, never through url.URL.String.
package messaging
