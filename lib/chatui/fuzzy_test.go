// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"slices"
	"testing"

	"github.com/bureau-foundation/bureau-chat/chat"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
)

func TestFuzzyMatchSubstring(t *testing.T) {
	result := fuzzyMatch("Engineering standup", []rune("stand"), nil)
	if result.Score <= 0 {
		t.Fatal("expected positive score for substring match")
	}
	if len(result.Positions) != 5 {
		t.Fatalf("positions = %v, want 5 entries", result.Positions)
	}
	if !slices.IsSorted(result.Positions) {
		t.Errorf("positions %v are not ascending", result.Positions)
	}
}

func TestFuzzyMatchNonContiguous(t *testing.T) {
	result := fuzzyMatch("release planning", []rune("rpl"), nil)
	if result.Score <= 0 {
		t.Fatal("expected positive score for non-contiguous match")
	}
}

func TestFuzzyMatchNoMatch(t *testing.T) {
	result := fuzzyMatch("release planning", []rune("xyz"), nil)
	if result.Score != 0 || len(result.Positions) != 0 {
		t.Errorf("got %+v, want zero result", result)
	}
}

func TestFuzzyMatchCaseInsensitive(t *testing.T) {
	for _, test := range []struct {
		text    string
		pattern string
	}{
		{"Release Planning", "planning"},
		{"OPS ALERTS", "ops"},
		{"ops alerts", "OPS"},
	} {
		t.Run(test.text+"/"+test.pattern, func(t *testing.T) {
			if result := fuzzyMatch(test.text, []rune(test.pattern), nil); result.Score <= 0 {
				t.Errorf("score = %d, want positive", result.Score)
			}
		})
	}
}

func TestFuzzyMatchEmptyInputs(t *testing.T) {
	if result := fuzzyMatch("anything", nil, nil); result.Score != 0 {
		t.Errorf("empty pattern score = %d, want 0", result.Score)
	}
	if result := fuzzyMatch("", []rune("a"), nil); result.Score != 0 {
		t.Errorf("empty text score = %d, want 0", result.Score)
	}
}

func testRooms() []chat.Room {
	return []chat.Room{
		{ID: ref.MustParseRoomID("!lobby:bureau.local"), Name: "Lobby"},
		{ID: ref.MustParseRoomID("!ops:bureau.local"), Name: "Ops alerts"},
		{ID: ref.MustParseRoomID("!plan:bureau.local"), Name: "Release planning"},
	}
}

func TestRoomFilterEmptyReturnsAll(t *testing.T) {
	var filter RoomFilter
	matches := filter.Apply(testRooms())
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for index, match := range matches {
		if match.Room != testRooms()[index] {
			t.Errorf("match %d = %v, want input order", index, match.Room)
		}
		if match.Score != 0 || match.Positions != nil {
			t.Errorf("match %d has score %d positions %v, want none", index, match.Score, match.Positions)
		}
	}
}

func TestRoomFilterNarrowsByName(t *testing.T) {
	filter := RoomFilter{Input: "alert"}
	matches := filter.Apply(testRooms())
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].Room.Name != "Ops alerts" {
		t.Errorf("matched %q, want Ops alerts", matches[0].Room.Name)
	}
	if len(matches[0].Positions) != len("alert") {
		t.Errorf("positions = %v, want one per pattern rune", matches[0].Positions)
	}
}

func TestRoomFilterMatchesRoomID(t *testing.T) {
	rooms := []chat.Room{{ID: ref.MustParseRoomID("!xq7rtz:bureau.local"), Name: chat.UnnamedRoom}}
	filter := RoomFilter{Input: "xq7"}
	matches := filter.Apply(rooms)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Positions != nil {
		t.Errorf("ID match positions = %v, want none (they index the ID, not the name)", matches[0].Positions)
	}
}

func TestRoomFilterInputEditing(t *testing.T) {
	var filter RoomFilter
	if filter.HandleBackspace() {
		t.Error("backspace on empty filter reported a change")
	}
	filter.HandleRune('o')
	filter.HandleRune('p')
	filter.HandleRune('é')
	if filter.Input != "opé" {
		t.Fatalf("input = %q, want opé", filter.Input)
	}
	if !filter.HandleBackspace() || filter.Input != "op" {
		t.Errorf("after backspace input = %q, want op", filter.Input)
	}
	filter.Active = true
	filter.Clear()
	if filter.Input != "" || filter.Active {
		t.Errorf("after Clear got %+v", filter)
	}
}
