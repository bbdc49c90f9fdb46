// Package whatsapp connects the moderation processor to a WhatsApp account
// through whatsmeow.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/marslan-786/group-guard/internal/logging"
	"github.com/marslan-786/group-guard/internal/moderation"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
)

var (
	ErrAlreadyPaired = errors.New("device is already paired")
	ErrNotConnected  = errors.New("whatsapp client is not connected")
)

// MessageHandler consumes inbound messages one at a time.
type MessageHandler interface {
	Handle(ctx context.Context, msg moderation.IncomingMessage) error
}

type Options struct {
	// PairPhone, when set, logs in with a phone pairing code instead of a QR
	// code.
	PairPhone string
	// QROut receives the rendered QR code. Nil disables QR rendering.
	QROut io.Writer
}

type Bot struct {
	client *whatsmeow.Client
	log    *slog.Logger
	opts   Options

	mu      sync.Mutex
	ctx     context.Context
	handler MessageHandler
	fatal   chan error
}

// NewBot loads the first device from the session store, or a fresh one when
// nothing has been paired yet.
func NewBot(ctx context.Context, container *sqlstore.Container, log *slog.Logger, opts Options) (*Bot, error) {
	store.SetOSInfo("Group Guard", [3]uint32{1, 0, 0})

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	client := whatsmeow.NewClient(device, logging.WhatsApp(log, "Client"))
	client.EnableAutoReconnect = true

	return &Bot{
		client: client,
		log:    log,
		opts:   opts,
		fatal:  make(chan error, 1),
	}, nil
}

func (b *Bot) Channel() *Channel { return NewChannel(b.client) }

func (b *Bot) IsConnected() bool { return b.client.IsConnected() }

func (b *Bot) IsLoggedIn() bool { return b.client.IsLoggedIn() }

// Run connects and dispatches events to h until ctx ends or the session is
// lost for good.
func (b *Bot) Run(ctx context.Context, h MessageHandler) error {
	b.mu.Lock()
	b.ctx = ctx
	b.handler = h
	b.mu.Unlock()

	b.client.AddEventHandler(b.handleEvent)
	defer b.client.Disconnect()

	if b.client.Store.ID == nil {
		if err := b.login(ctx); err != nil {
			return err
		}
	} else {
		b.log.Info("resuming session", "jid", b.client.Store.ID.String())
		if err := b.client.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-b.fatal:
		return err
	}
}

// PairPhone requests a pairing code for phone on an unpaired, connected
// client. The code is entered on the phone under Linked Devices.
func (b *Bot) PairPhone(ctx context.Context, phone string) (string, error) {
	if b.client.Store.ID != nil {
		return "", ErrAlreadyPaired
	}
	if !b.client.IsConnected() {
		return "", ErrNotConnected
	}
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	code, err := b.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return "", fmt.Errorf("pair phone: %w", err)
	}
	return code, nil
}

func (b *Bot) login(ctx context.Context) error {
	qrChan, err := b.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("open qr channel: %w", err)
	}
	if err := b.client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	go func() {
		requested := false
		for item := range qrChan {
			switch item.Event {
			case whatsmeow.QRChannelEventCode:
				if b.opts.PairPhone != "" {
					if !requested {
						requested = true
						b.requestPairingCode(ctx)
					}
					continue
				}
				b.printQR(item.Code)
			case whatsmeow.QRChannelEventError:
				b.log.Error("pairing failed", "error", item.Error)
			default:
				b.log.Info("pairing event", "event", item.Event)
			}
		}
	}()
	return nil
}

func (b *Bot) requestPairingCode(ctx context.Context) {
	code, err := b.PairPhone(ctx, b.opts.PairPhone)
	if err != nil {
		b.log.Error("pairing code request failed", "phone", b.opts.PairPhone, "error", err)
		return
	}
	b.log.Info("enter this pairing code on your phone under Linked Devices", "code", code)
}

func (b *Bot) printQR(code string) {
	if b.opts.QROut == nil {
		b.log.Info("qr code received", "code", code)
		return
	}
	qrterminal.GenerateHalfBlock(code, qrterminal.L, b.opts.QROut)
	fmt.Fprintln(b.opts.QROut, "Scan via WhatsApp -> Linked Devices -> Link a device")
}

func (b *Bot) handleEvent(evt any) {
	switch v := evt.(type) {
	case *events.Message:
		b.handleMessage(v)
		return
	case *events.Connected:
		b.log.Info("whatsapp connected")
		return
	case *events.PairSuccess:
		b.log.Info("device paired", "jid", v.ID.String(), "platform", v.Platform)
		return
	}

	reconnect, err := ShouldReconnect(evt)
	switch {
	case err != nil:
		b.log.Error("whatsapp session ended", "error", err)
		select {
		case b.fatal <- err:
		default:
		}
	case reconnect:
		b.log.Warn("whatsapp disconnected, reconnecting")
	}
}

func (b *Bot) handleMessage(evt *events.Message) {
	b.mu.Lock()
	ctx, h := b.ctx, b.handler
	b.mu.Unlock()
	if h == nil {
		return
	}

	msg := ToIncoming(evt)
	if err := h.Handle(ctx, msg); err != nil {
		b.log.Error("message handling failed", "group", msg.GroupID, "sender", msg.SenderID, "id", msg.ID, "error", err)
	}
}
