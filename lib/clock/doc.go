// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that waits (the sync loop's retry backoff, the TUI's
// notification fade) takes a Clock instead of calling time.After or
// time.AfterFunc. Production wiring passes Real(); tests pass Fake(),
// which only moves when Advance is called:
//
//	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop.Run(ctx)          // registers a backoff timer on error
//	fakeClock.WaitForTimers(1)
//	fakeClock.Advance(time.Second)
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing time.
package clock
