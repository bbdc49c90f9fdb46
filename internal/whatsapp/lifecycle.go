package whatsapp

import (
	"errors"
	"fmt"

	"go.mau.fi/whatsmeow/types/events"
)

var (
	ErrLoggedOut      = errors.New("whatsapp session logged out; pair the device again")
	ErrStreamReplaced = errors.New("whatsapp session opened elsewhere")
)

// ShouldReconnect decides what a connection event means for the bot. A
// dropped connection is retried; a logout or a replaced stream ends the run
// with an error, since only re-pairing can recover it.
func ShouldReconnect(evt any) (bool, error) {
	switch v := evt.(type) {
	case *events.Disconnected:
		return true, nil
	case *events.LoggedOut:
		return false, fmt.Errorf("%w (reason: %s)", ErrLoggedOut, v.Reason)
	case *events.StreamReplaced:
		return false, ErrStreamReplaced
	default:
		return false, nil
	}
}
