package moderation

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

type sentText struct {
	Group    string
	Text     string
	Mentions []string
}

// fakeChannel records every call the processor makes.
type fakeChannel struct {
	mu       sync.Mutex
	groups   map[string]GroupMetadata
	sent     []sentText
	deleted  []IncomingMessage
	removed  []string
	fetches  int
	kickErr  error
	fetchErr error
}

func newFakeChannel(groups ...GroupMetadata) *fakeChannel {
	f := &fakeChannel{groups: make(map[string]GroupMetadata)}
	for _, g := range groups {
		f.groups[g.ID] = g
	}
	return f
}

func (f *fakeChannel) SendText(_ context.Context, groupID, text string, mentions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentText{Group: groupID, Text: text, Mentions: mentions})
	return nil
}

func (f *fakeChannel) GroupMetadata(_ context.Context, groupID string) (GroupMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return GroupMetadata{}, f.fetchErr
	}
	return f.groups[groupID], nil
}

func (f *fakeChannel) DeleteMessage(_ context.Context, msg IncomingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, msg)
	return nil
}

func (f *fakeChannel) RemoveParticipant(_ context.Context, _, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kickErr != nil {
		return f.kickErr
	}
	f.removed = append(f.removed, memberID)
	return nil
}

func (f *fakeChannel) lastSent() sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentText{}
	}
	return f.sent[len(f.sent)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
