// Package moderation turns group messages into moderation actions: muted
// senders are silenced, and admins drive the bot through prefixed commands.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

const DefaultPrefix = "/"

type Processor struct {
	channel  Channel
	mutes    MuteStore
	commands *Registry
	prefix   string
	log      *slog.Logger
}

type Option func(*Processor)

func WithPrefix(prefix string) Option {
	return func(p *Processor) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(p *Processor) { p.commands = r }
}

func NewProcessor(channel Channel, mutes MuteStore, log *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		channel:  channel,
		mutes:    mutes,
		commands: DefaultRegistry(),
		prefix:   DefaultPrefix,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one inbound message to completion. Messages from muted
// senders are deleted before any command parsing happens.
func (p *Processor) Handle(ctx context.Context, msg IncomingMessage) error {
	if !msg.IsGroup || msg.IsFromMe || msg.GroupID == "" || msg.SenderID == "" {
		return nil
	}

	if p.senderMuted(msg) {
		p.log.Info("deleting message from muted member", "group", msg.GroupID, "sender", msg.SenderID, "id", msg.ID)
		if err := p.channel.DeleteMessage(ctx, msg); err != nil {
			return fmt.Errorf("delete muted message %s: %w", msg.ID, err)
		}
		return nil
	}

	name, args, ok := ParseCommand(p.prefix, msg.Text)
	if !ok {
		return nil
	}
	cmd, ok := p.commands.Lookup(name)
	if !ok {
		return nil
	}

	group, err := p.channel.GroupMetadata(ctx, msg.GroupID)
	if err != nil {
		return fmt.Errorf("fetch metadata for %s: %w", msg.GroupID, err)
	}

	log := p.log.With("command", cmd.Name, "category", cmd.Category, "group", msg.GroupID, "sender", msg.SenderID)
	if cmd.AdminOnly && !lo.SomeBy(msg.SenderIDs(), group.IsAdmin) {
		log.Info("command denied")
		return p.channel.SendText(ctx, msg.GroupID, ReplyAdminOnly, nil)
	}

	log.Info("command")
	err = cmd.Execute(ctx, Invocation{
		Message: msg,
		Group:   group,
		Args:    args,
		Channel: p.channel,
		Mutes:   p.mutes,
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// senderMuted matches both sender identities, since a member may have been
// muted by phone JID and now write under their LID, or the reverse.
func (p *Processor) senderMuted(msg IncomingMessage) bool {
	return lo.SomeBy(msg.SenderIDs(), func(id string) bool {
		return p.mutes.IsMuted(msg.GroupID, id)
	})
}

// ParseCommand splits "<prefix><name> <args>" into a lower-cased name and the
// trimmed remainder. Text after the first whitespace is kept verbatim,
// newlines included.
func ParseCommand(prefix, text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	rest := text[len(prefix):]

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		end = len(rest)
	}
	name = strings.ToLower(rest[:end])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(rest[end:]), true
}
