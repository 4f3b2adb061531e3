// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formKind identifies which single-field form is open.
type formKind int

const (
	formCreateRoom formKind = iota
	formJoinRoom
	formAcceptInvite
	formInviteUser
	formCompose
)

// prompt is the label shown before the form's input.
func (kind formKind) prompt() string {
	switch kind {
	case formCreateRoom:
		return "New room name: "
	case formJoinRoom:
		return "Join room ID: "
	case formAcceptInvite:
		return "Accept invite to: "
	case formInviteUser:
		return "Invite user: "
	case formCompose:
		return "> "
	default:
		return ": "
	}
}

func (kind formKind) placeholder() string {
	switch kind {
	case formJoinRoom, formAcceptInvite:
		return "!room:example.org"
	case formInviteUser:
		return "@user:example.org"
	case formCompose:
		return "Write a message (markdown)"
	default:
		return ""
	}
}

// bindsDraft reports whether the form's value mirrors a controller
// draft. Join and accept take their room ID directly.
func (kind formKind) bindsDraft() bool {
	switch kind {
	case formCreateRoom, formInviteUser, formCompose:
		return true
	default:
		return false
	}
}

// form is an open single-line prompt.
type form struct {
	kind  formKind
	input textinput.Model
}

// newForm builds a focused form. The returned command starts the
// cursor blink.
func newForm(kind formKind, value string, width int) (*form, tea.Cmd) {
	input := textinput.New()
	input.Prompt = kind.prompt()
	input.Placeholder = kind.placeholder()
	input.CharLimit = 4096
	input.Width = max(width-len(input.Prompt)-1, 10)
	input.SetValue(value)
	input.CursorEnd()
	blink := input.Focus()
	return &form{kind: kind, input: input}, blink
}
