package whatsapp

import (
	"context"
	"fmt"

	"github.com/marslan-786/group-guard/internal/moderation"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

// groupClient is the slice of *whatsmeow.Client the channel uses.
type groupClient interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	GetGroupInfo(ctx context.Context, jid types.JID) (*types.GroupInfo, error)
	BuildRevoke(chat, sender types.JID, id types.MessageID) *waE2E.Message
	UpdateGroupParticipants(ctx context.Context, jid types.JID, participantChanges []types.JID, action whatsmeow.ParticipantChange) ([]types.GroupParticipant, error)
}

var _ groupClient = (*whatsmeow.Client)(nil)

// Channel implements moderation.Channel on top of a whatsmeow client.
type Channel struct {
	client groupClient
}

var _ moderation.Channel = (*Channel)(nil)

func NewChannel(client groupClient) *Channel {
	return &Channel{client: client}
}

func (c *Channel) SendText(ctx context.Context, groupID, text string, mentions []string) error {
	chat, err := types.ParseJID(groupID)
	if err != nil {
		return fmt.Errorf("parse group %q: %w", groupID, err)
	}

	msg := &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String(text)}}
	if len(mentions) > 0 {
		msg.ExtendedTextMessage.ContextInfo = &waE2E.ContextInfo{MentionedJID: mentions}
	}

	if _, err := c.client.SendMessage(ctx, chat, msg); err != nil {
		return fmt.Errorf("send to %s: %w", groupID, err)
	}
	return nil
}

func (c *Channel) GroupMetadata(ctx context.Context, groupID string) (moderation.GroupMetadata, error) {
	chat, err := types.ParseJID(groupID)
	if err != nil {
		return moderation.GroupMetadata{}, fmt.Errorf("parse group %q: %w", groupID, err)
	}

	info, err := c.client.GetGroupInfo(ctx, chat)
	if err != nil {
		return moderation.GroupMetadata{}, fmt.Errorf("get group info %s: %w", groupID, err)
	}

	meta := moderation.GroupMetadata{
		ID:           groupID,
		Participants: make([]moderation.Participant, 0, len(info.Participants)),
	}
	for _, p := range info.Participants {
		id := p.JID.ToNonAD()
		participant := moderation.Participant{
			ID:      id.String(),
			IsAdmin: p.IsAdmin || p.IsSuperAdmin,
		}
		if lid := p.LID.ToNonAD(); !lid.IsEmpty() && lid != id {
			participant.AltID = lid.String()
		}
		meta.Participants = append(meta.Participants, participant)
	}
	return meta, nil
}

// DeleteMessage revokes someone else's message, which needs the bot to be a
// group admin.
func (c *Channel) DeleteMessage(ctx context.Context, msg moderation.IncomingMessage) error {
	chat, err := types.ParseJID(msg.GroupID)
	if err != nil {
		return fmt.Errorf("parse group %q: %w", msg.GroupID, err)
	}
	sender, err := types.ParseJID(msg.SenderID)
	if err != nil {
		return fmt.Errorf("parse sender %q: %w", msg.SenderID, err)
	}

	if _, err := c.client.SendMessage(ctx, chat, c.client.BuildRevoke(chat, sender, msg.ID)); err != nil {
		return fmt.Errorf("revoke %s in %s: %w", msg.ID, msg.GroupID, err)
	}
	return nil
}

func (c *Channel) RemoveParticipant(ctx context.Context, groupID, memberID string) error {
	chat, err := types.ParseJID(groupID)
	if err != nil {
		return fmt.Errorf("parse group %q: %w", groupID, err)
	}
	target, err := types.ParseJID(memberID)
	if err != nil {
		return fmt.Errorf("parse member %q: %w", memberID, err)
	}

	res, err := c.client.UpdateGroupParticipants(ctx, chat, []types.JID{target}, whatsmeow.ParticipantChangeRemove)
	if err != nil {
		return fmt.Errorf("remove %s from %s: %w", memberID, groupID, err)
	}
	// The request can succeed while the server refuses the individual change.
	for _, p := range res {
		if p.Error != 0 {
			return fmt.Errorf("remove %s from %s: server status %d", memberID, groupID, p.Error)
		}
	}
	return nil
}
