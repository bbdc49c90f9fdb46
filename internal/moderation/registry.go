package moderation

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Invocation carries one parsed command to its handler.
type Invocation struct {
	Message IncomingMessage
	Group   GroupMetadata
	Args    string
	Channel Channel
	Mutes   MuteStore
	Log     *slog.Logger
}

type HandlerFunc func(ctx context.Context, inv Invocation) error

type Command struct {
	Name      string
	Category  string
	AdminOnly bool
	Execute   HandlerFunc
}

type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd, replacing any command with the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the group moderation commands.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Command{Name: "tagall", Category: "Group", AdminOnly: true, Execute: tagAll})
	r.Register(Command{Name: "mute", Category: "Group", AdminOnly: true, Execute: muteMember})
	r.Register(Command{Name: "unmute", Category: "Group", AdminOnly: true, Execute: unmuteMember})
	r.Register(Command{Name: "kick", Category: "Group", AdminOnly: true, Execute: kickMember})
	return r
}
