// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds reads of Matrix client-server API response
// bodies. ReadResponse and ErrorBody both stop at MaxResponseSize so
// a misbehaving homeserver cannot exhaust memory with an oversized
// /sync or error body.
package netutil

import "io"

// MaxResponseSize is the bound on response body reads: 64 MB. An
// initial /sync for an account in many rooms is the largest legitimate
// body and stays well below this.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ErrorBody returns an error response body as a string for diagnostics.
// Read errors are ignored; a partial body still helps.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
