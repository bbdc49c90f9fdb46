package whatsapp

import (
	"github.com/marslan-786/group-guard/internal/moderation"
	"github.com/samber/lo"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// ToIncoming flattens a whatsmeow message event. Device suffixes are dropped
// from every id so the same member always maps to the same string.
func ToIncoming(evt *events.Message) moderation.IncomingMessage {
	info := evt.Message.GetExtendedTextMessage().GetContextInfo()
	return moderation.IncomingMessage{
		ID:          evt.Info.ID,
		GroupID:     evt.Info.Chat.ToNonAD().String(),
		SenderID:    evt.Info.Sender.ToNonAD().String(),
		SenderAltID: jidString(evt.Info.SenderAlt),
		IsGroup:     evt.Info.IsGroup,
		IsFromMe:    evt.Info.IsFromMe,
		Text:        messageText(evt.Message),
		Mentions: lo.FilterMap(info.GetMentionedJID(), func(id string, _ int) (string, bool) {
			id = normalizeJID(id)
			return id, id != ""
		}),
		ReplyTo: normalizeJID(info.GetParticipant()),
	}
}

func messageText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	return msg.GetExtendedTextMessage().GetText()
}

func jidString(jid types.JID) string {
	if jid.IsEmpty() {
		return ""
	}
	return jid.ToNonAD().String()
}

func normalizeJID(raw string) string {
	if raw == "" {
		return ""
	}
	jid, err := types.ParseJID(raw)
	if err != nil {
		return raw
	}
	return jid.ToNonAD().String()
}
