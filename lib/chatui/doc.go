// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatui is the terminal front end for bureau-chat, built on
// bubbletea. It renders a [chat.Controller]'s state and turns key
// presses into controller actions.
//
// The layout is a left sidebar listing joined rooms and pending
// invites, and a right pane showing the active room's messages with a
// single-line composer underneath. Forms for creating a room, joining
// a room by ID, accepting an invite, and inviting a user open as a
// one-line prompt above the status bar.
//
// Controller actions block on the homeserver, so the model runs them
// as tea.Cmds. State changes flow back through a [ProgramSink], which
// the controller calls from whatever goroutine mutated state and
// which forwards a message into the program loop. The model never
// caches controller state beyond the latest [chat.State] snapshot.
//
// Message bodies are rendered as markdown (goldmark, with chroma for
// fenced code). The sidebar supports an fzf-style fuzzy filter over
// room names and IDs. Notifications and warn-level log records show
// in the status bar and fade after a configurable delay measured on a
// [clock.Clock], so tests drive the fade with a fake clock.
package chatui
