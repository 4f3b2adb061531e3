// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

// Severity classifies a notification for display.
type Severity int

const (
	// SeverityInfo reports background activity, such as a new message.
	SeverityInfo Severity = iota
	// SeveritySuccess reports a completed action.
	SeveritySuccess
	// SeverityFailure reports a failed action.
	SeverityFailure
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Severity Severity
	Text     string
}

// Notifier receives notifications. Notify must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(notification Notification) { f(notification) }

// Notification texts. The join and create successes, the invite success,
// and live messages append the relevant identifier or content.
const (
	textCreateSuccess = "Room created successfully: "
	textCreateFailure = "Failed to create room. Please try again."
	textJoinSuccess   = "Successfully joined room: "
	textJoinFailure   = "Failed to join room. Please try again."
	textAcceptSuccess = "Successfully joined invited room: "
	textAcceptFailure = "Failed to accept room invite. Please try again."
	textInviteFailure = "Failed to invite user. Please try again."
	textSendSuccess   = "Message sent successfully."
	textSendFailure   = "Failed to send message. Please try again."
)
