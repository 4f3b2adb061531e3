// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/bureau-chat/chat"
)

// Theme defines the color palette for the chat TUI. All colors use
// lipgloss ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Sender names in the message pane. The local account's own
	// messages use OwnSender so they stand out.
	SenderForeground lipgloss.Color
	OwnSender        lipgloss.Color

	// Pending invites in the sidebar.
	InviteForeground lipgloss.Color

	// Status bar notifications by severity.
	NoticeInfo    lipgloss.Color
	NoticeSuccess lipgloss.Color
	NoticeFailure lipgloss.Color

	// Characters matched by the room filter.
	FilterHighlight lipgloss.Color
}

// SeverityColor returns the status bar color for a notification.
func (theme Theme) SeverityColor(severity chat.Severity) lipgloss.Color {
	switch severity {
	case chat.SeveritySuccess:
		return theme.NoticeSuccess
	case chat.SeverityFailure:
		return theme.NoticeFailure
	default:
		return theme.NoticeInfo
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	SenderForeground: lipgloss.Color("75"),  // blue
	OwnSender:        lipgloss.Color("141"), // light purple

	InviteForeground: lipgloss.Color("220"), // amber

	NoticeInfo:    lipgloss.Color("75"),
	NoticeSuccess: lipgloss.Color("114"), // green
	NoticeFailure: lipgloss.Color("196"), // red

	FilterHighlight: lipgloss.Color("58"),
}
