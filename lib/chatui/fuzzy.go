// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/bureau-chat/chat"
)

var fuzzyInitOnce sync.Once

// FuzzyResult is the outcome of matching one string against a filter
// pattern. Score is zero when the pattern did not match. Positions are
// rune offsets into the matched text, ascending.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// fuzzyMatch runs fzf's V2 algorithm over text. Matching is case
// insensitive. An empty pattern never matches. slab may be nil; pass a
// shared slab when matching many strings in a row.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}
	fuzzyInitOnce.Do(func() { algo.Init("default") })

	lowered := make([]rune, len(pattern))
	for index, character := range pattern {
		lowered[index] = unicode.ToLower(character)
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	var sorted []int
	if positions != nil {
		sorted = slices.Clone(*positions)
		slices.Sort(sorted)
	}
	return FuzzyResult{Score: result.Score, Positions: sorted}
}

// RoomMatch is a room that passed the filter, with the rune positions
// in its display name to highlight.
type RoomMatch struct {
	Room      chat.Room
	Score     int
	Positions []int
}

// RoomFilter narrows the sidebar's room list. Both the display name
// and the room ID are searched; the better score wins and only name
// matches carry highlight positions.
type RoomFilter struct {
	// Input is the current query.
	Input string

	// Active is true while the filter has keyboard focus.
	Active bool

	slab *util.Slab
}

// Apply returns the rooms matching the filter, best score first. Rooms
// with equal scores keep their input order. An empty filter returns
// every room with a zero score.
func (filter *RoomFilter) Apply(rooms []chat.Room) []RoomMatch {
	if strings.TrimSpace(filter.Input) == "" {
		matches := make([]RoomMatch, len(rooms))
		for index, room := range rooms {
			matches[index] = RoomMatch{Room: room}
		}
		return matches
	}
	if filter.slab == nil {
		filter.slab = util.MakeSlab(100*1024, 2048)
	}

	pattern := []rune(strings.TrimSpace(filter.Input))
	var matches []RoomMatch
	for _, room := range rooms {
		byName := fuzzyMatch(room.Name, pattern, filter.slab)
		byID := fuzzyMatch(room.ID.String(), pattern, filter.slab)
		switch {
		case byName.Score > 0 && byName.Score >= byID.Score:
			matches = append(matches, RoomMatch{Room: room, Score: byName.Score, Positions: byName.Positions})
		case byID.Score > 0:
			matches = append(matches, RoomMatch{Room: room, Score: byID.Score})
		}
	}
	slices.SortStableFunc(matches, func(a, b RoomMatch) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}

// HandleRune appends a typed character to the query.
func (filter *RoomFilter) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character. Returns false if the
// query was already empty.
func (filter *RoomFilter) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the query and drops focus.
func (filter *RoomFilter) Clear() {
	filter.Input = ""
	filter.Active = false
}
