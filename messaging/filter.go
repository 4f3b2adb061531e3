// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
)

// SyncFilter configures what a chat client receives from /sync.
type SyncFilter struct {
	// TimelineTypes restricts timeline events to these event types.
	// Empty means all types.
	TimelineTypes []string

	// TimelineLimit caps timeline events per room per response.
	// Zero leaves the server default.
	TimelineLimit int

	// StateTypes restricts room state events. Empty means all types.
	StateTypes []string
}

// BuildInlineFilter renders the filter as the inline JSON form /sync
// accepts in its filter query parameter. Presence and account data are
// always suppressed.
func BuildInlineFilter(filter SyncFilter) string {
	roomFilter := map[string]any{}

	timeline := map[string]any{}
	if len(filter.TimelineTypes) > 0 {
		timeline["types"] = filter.TimelineTypes
	}
	if filter.TimelineLimit > 0 {
		timeline["limit"] = filter.TimelineLimit
	}
	if len(timeline) > 0 {
		roomFilter["timeline"] = timeline
	}
	if len(filter.StateTypes) > 0 {
		roomFilter["state"] = map[string]any{"types": filter.StateTypes}
	}

	top := map[string]any{
		"room":         roomFilter,
		"presence":     map[string]any{"types": []string{}},
		"account_data": map[string]any{"types": []string{}},
	}

	data, _ := json.Marshal(top)
	return string(data)
}
