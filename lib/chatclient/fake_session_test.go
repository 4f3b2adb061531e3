// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatclient

import (
	"context"
	"errors"
	"sync"

	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

type syncResult struct {
	response *messaging.SyncResponse
	err      error
}

// fakeSession is an in-memory messaging.Session. Sync blocks until the
// test queues a result.
type fakeSession struct {
	results chan syncResult
	calls   chan messaging.SyncOptions

	mu          sync.Mutex
	history     map[ref.RoomID][]messaging.Event
	historyErr  error
	joinErr     error
	createCount int
	invites     []ref.UserID
	sent        []messaging.MessageContent
	closedIdle  int

	// beforeHistory runs once, at the start of the next RoomMessages.
	beforeHistory func()
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		results: make(chan syncResult, 16),
		calls:   make(chan messaging.SyncOptions, 16),
		history: make(map[ref.RoomID][]messaging.Event),
	}
}

var _ messaging.Session = (*fakeSession)(nil)

func (s *fakeSession) UserID() ref.UserID { return ref.MustParseUserID("@me:example.org") }
func (s *fakeSession) Close() error       { return nil }

func (s *fakeSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	return s.UserID(), nil
}

func (s *fakeSession) CreateRoom(ctx context.Context, request messaging.CreateRoomRequest) (*messaging.CreateRoomResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if request.Name == "" {
		return nil, errors.New("name required")
	}
	s.createCount++
	return &messaging.CreateRoomResponse{RoomID: ref.MustParseRoomID("!created:example.org")}, nil
}

func (s *fakeSession) JoinRoom(ctx context.Context, roomID ref.RoomID) (ref.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joinErr != nil {
		return ref.RoomID{}, s.joinErr
	}
	return roomID, nil
}

func (s *fakeSession) InviteUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites = append(s.invites, userID)
	return nil
}

func (s *fakeSession) SendMessage(ctx context.Context, roomID ref.RoomID, content messaging.MessageContent) (ref.EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, content)
	return ref.MustParseEventID("$sent"), nil
}

func (s *fakeSession) RoomMessages(ctx context.Context, roomID ref.RoomID, options messaging.RoomMessagesOptions) (*messaging.RoomMessagesResponse, error) {
	s.mu.Lock()
	hook := s.beforeHistory
	s.beforeHistory = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return &messaging.RoomMessagesResponse{Chunk: s.history[roomID]}, nil
}

func (s *fakeSession) Sync(ctx context.Context, options messaging.SyncOptions) (*messaging.SyncResponse, error) {
	s.calls <- options
	select {
	case result := <-s.results:
		return result.response, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeSession) CloseIdleConnections() {
	s.mu.Lock()
	s.closedIdle++
	s.mu.Unlock()
}

func message(sender, body string) messaging.Event {
	return messaging.Event{
		Type:    ref.EventTypeRoomMessage,
		Sender:  ref.MustParseUserID(sender),
		Content: map[string]any{"msgtype": "m.text", "body": body},
	}
}

func messageWithID(eventID, sender, body string) messaging.Event {
	event := message(sender, body)
	event.EventID = ref.MustParseEventID(eventID)
	return event
}

func roomName(name string) messaging.Event {
	stateKey := ""
	return messaging.Event{
		Type:     ref.EventTypeRoomName,
		Sender:   ref.MustParseUserID("@admin:example.org"),
		Content:  map[string]any{"name": name},
		StateKey: &stateKey,
	}
}
