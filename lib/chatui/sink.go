// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/bureau-chat/chat"
)

// stateChangedMsg tells the model to pull a fresh chat.State.
type stateChangedMsg struct{}

// noticeMsg carries a controller notification into the program loop.
type noticeMsg struct {
	notification chat.Notification
}

// sinkQueueSize bounds the messages waiting for the program loop.
// Beyond it, info and success notices are dropped; failure notices and
// state changes wait in an overflow list the pump drains.
const sinkQueueSize = 256

// ProgramSink connects a chat.Controller to a bubbletea program. Pass
// it as the controller's Notifier and its Changed method as OnChange.
//
// The controller calls both from arbitrary goroutines, including the
// program loop itself when the model updates a draft. tea.Program.Send
// blocks until the loop receives, so the sink never sends inline: it
// queues and a single pump goroutine forwards in order. State changes
// are coalesced until the model acknowledges the last one.
type ProgramSink struct {
	queue   chan tea.Msg
	wake    chan struct{}
	pending atomic.Bool
	done    chan struct{}

	// mu guards overflow and orders enqueues against it: while
	// overflow is non-empty every kept message goes there, so nothing
	// overtakes it through the queue.
	mu       sync.Mutex
	overflow []tea.Msg

	startOnce sync.Once
	closeOnce sync.Once
}

// NewProgramSink creates a sink. Nothing is forwarded until Start.
func NewProgramSink() *ProgramSink {
	return &ProgramSink{
		queue: make(chan tea.Msg, sinkQueueSize),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Start begins forwarding to program. Later calls are ignored.
func (sink *ProgramSink) Start(program *tea.Program) {
	sink.startOnce.Do(func() {
		go sink.pump(program.Send)
	})
}

// Close stops the pump. Messages still queued are discarded.
func (sink *ProgramSink) Close() {
	sink.closeOnce.Do(func() { close(sink.done) })
}

func (sink *ProgramSink) pump(send func(tea.Msg)) {
	for {
		select {
		case <-sink.done:
			return
		case message := <-sink.queue:
			send(message)
		case <-sink.wake:
			sink.drain(send)
		}
	}
}

// drain forwards everything queued, then the overflow. Queued messages
// are always older than overflowed ones.
func (sink *ProgramSink) drain(send func(tea.Msg)) {
	for {
		select {
		case message := <-sink.queue:
			send(message)
			continue
		default:
		}
		break
	}

	sink.mu.Lock()
	held := sink.overflow
	sink.overflow = nil
	sink.mu.Unlock()

	for _, message := range held {
		send(message)
	}
}

// Notify implements chat.Notifier. Failure notices are never dropped.
func (sink *ProgramSink) Notify(notification chat.Notification) {
	sink.enqueue(noticeMsg{notification: notification}, notification.Severity == chat.SeverityFailure)
}

// Changed is the controller's OnChange callback.
func (sink *ProgramSink) Changed() {
	if !sink.pending.CompareAndSwap(false, true) {
		return
	}
	sink.enqueue(stateChangedMsg{}, true)
}

// acknowledge is called by the model before it reads state, so any
// change after this point schedules another refresh.
func (sink *ProgramSink) acknowledge() {
	sink.pending.Store(false)
}

// enqueue queues message without blocking. When the queue is full a
// kept message goes to the overflow and wakes the pump; any other
// message is dropped.
func (sink *ProgramSink) enqueue(message tea.Msg, keep bool) {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if len(sink.overflow) == 0 {
		select {
		case sink.queue <- message:
			return
		default:
		}
	}
	if !keep {
		return
	}
	sink.overflow = append(sink.overflow, message)
	select {
	case sink.wake <- struct{}{}:
	default:
	}
}
