// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern for tests that wait on channels fed by other goroutines (the
// sync loop, subscription handlers, in-flight client calls). They are
// the only place tests touch the wall clock. Failures call t.Fatalf.
package testutil
