package moderation

import (
	"context"
	"strings"
)

// IncomingMessage is the transport-neutral view of one chat message.
type IncomingMessage struct {
	ID       string
	GroupID  string
	SenderID string
	// SenderAltID is the sender's other identity (LID or phone JID), empty
	// when the transport did not report one.
	SenderAltID string
	IsGroup     bool
	IsFromMe    bool
	Text        string
	Mentions    []string
	// ReplyTo is the author of the quoted message, empty when the message is
	// not a reply.
	ReplyTo string
}

// SenderIDs lists every identity the sender is known by.
func (m IncomingMessage) SenderIDs() []string {
	if m.SenderAltID == "" || m.SenderAltID == m.SenderID {
		return []string{m.SenderID}
	}
	return []string{m.SenderID, m.SenderAltID}
}

type Participant struct {
	ID string
	// AltID is the participant's other identity (LID or phone JID) when the
	// transport knows both.
	AltID   string
	IsAdmin bool
}

type GroupMetadata struct {
	ID           string
	Participants []Participant
}

func (g GroupMetadata) IsAdmin(memberID string) bool {
	for _, p := range g.Participants {
		if p.IsAdmin && (p.ID == memberID || (p.AltID != "" && p.AltID == memberID)) {
			return true
		}
	}
	return false
}

// Channel is everything the processor needs from the messaging transport.
type Channel interface {
	SendText(ctx context.Context, groupID, text string, mentions []string) error
	GroupMetadata(ctx context.Context, groupID string) (GroupMetadata, error)
	DeleteMessage(ctx context.Context, msg IncomingMessage) error
	RemoveParticipant(ctx context.Context, groupID, memberID string) error
}

type MuteStore interface {
	IsMuted(groupID, memberID string) bool
	Mute(ctx context.Context, groupID, memberID string) (bool, error)
	Unmute(ctx context.Context, groupID, memberID string) (bool, error)
}

// Handle renders a member id the way WhatsApp expects inside message text.
func Handle(memberID string) string {
	user, _, _ := strings.Cut(memberID, "@")
	return "@" + user
}
