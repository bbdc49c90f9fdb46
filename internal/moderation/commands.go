package moderation

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

const (
	ReplyAdminOnly    = "❌ Only admins can use this command."
	ReplyTagAllHeader = "📢 Attention everyone!"
	ReplyKickFailed   = "❌ Failed to kick user. Make sure I have admin permissions."
)

func replyNoTarget(verb string) string {
	return fmt.Sprintf("❌ Please mention a user or reply to their message to %s.", verb)
}

// resolveTarget picks the first mention, then the author of the quoted
// message.
func resolveTarget(msg IncomingMessage) (string, bool) {
	if m, ok := lo.Find(msg.Mentions, func(id string) bool { return id != "" }); ok {
		return m, true
	}
	if msg.ReplyTo != "" {
		return msg.ReplyTo, true
	}
	return "", false
}

func tagAll(ctx context.Context, inv Invocation) error {
	everyone := lo.Map(inv.Group.Participants, func(p Participant, _ int) string { return p.ID })
	text := inv.Args
	if text == "" {
		text = ReplyTagAllHeader
	}
	return inv.Channel.SendText(ctx, inv.Message.GroupID, text, everyone)
}

func muteMember(ctx context.Context, inv Invocation) error {
	group := inv.Message.GroupID
	target, ok := resolveTarget(inv.Message)
	if !ok {
		return inv.Channel.SendText(ctx, group, replyNoTarget("mute"), nil)
	}

	if _, err := inv.Mutes.Mute(ctx, group, target); err != nil {
		return fmt.Errorf("mute %s: %w", target, err)
	}
	return inv.Channel.SendText(ctx, group, Handle(target)+" has been muted 🔇", []string{target})
}

func unmuteMember(ctx context.Context, inv Invocation) error {
	group := inv.Message.GroupID
	target, ok := resolveTarget(inv.Message)
	if !ok {
		return inv.Channel.SendText(ctx, group, replyNoTarget("unmute"), nil)
	}

	removed, err := inv.Mutes.Unmute(ctx, group, target)
	if err != nil {
		return fmt.Errorf("unmute %s: %w", target, err)
	}
	text := Handle(target) + " is not muted ❌"
	if removed {
		text = Handle(target) + " has been unmuted 🔊"
	}
	return inv.Channel.SendText(ctx, group, text, []string{target})
}

// kickMember reports removal failures to the group instead of returning them.
func kickMember(ctx context.Context, inv Invocation) error {
	group := inv.Message.GroupID
	target, ok := resolveTarget(inv.Message)
	if !ok {
		return inv.Channel.SendText(ctx, group, replyNoTarget("kick"), nil)
	}

	if err := inv.Channel.RemoveParticipant(ctx, group, target); err != nil {
		inv.Log.Warn("kick failed", "group", group, "target", target, "error", err)
		return inv.Channel.SendText(ctx, group, ReplyKickFailed, nil)
	}
	return inv.Channel.SendText(ctx, group, Handle(target)+" has been kicked from the group ✅", []string{target})
}
