// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the chat client's credentials (the homeserver
// access token and, during a password login, the password) in memory
// allocated outside the Go heap.
//
// [Buffer] memory comes from an anonymous mmap, is mlocked against
// swap, marked MADV_DONTDUMP, and zeroed on Close. [ReadFromPath]
// loads a token file (or stdin with "-") straight into a Buffer.
//
// Depends on golang.org/x/sys/unix.
package secret
