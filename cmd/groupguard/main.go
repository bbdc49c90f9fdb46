package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/marslan-786/group-guard/internal/config"
	"github.com/marslan-786/group-guard/internal/logging"
	"github.com/marslan-786/group-guard/internal/moderation"
	"github.com/marslan-786/group-guard/internal/mute"
	"github.com/marslan-786/group-guard/internal/server"
	"github.com/marslan-786/group-guard/internal/whatsapp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "groupguard: %v\n", err)
		switch {
		case errors.Is(err, whatsapp.ErrLoggedOut):
			fmt.Fprintln(os.Stderr, "Logged out. Delete the session database and restart to pair again.")
		case errors.Is(err, whatsapp.ErrStreamReplaced):
			fmt.Fprintln(os.Stderr, "Another client took over this session. Stop it before restarting.")
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persister, closePersister, err := openPersister(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePersister()

	mutes, err := mute.Open(ctx, persister, log.With("component", "mute"))
	if err != nil {
		return err
	}

	container, err := whatsapp.OpenSessionStore(ctx, cfg.DatabaseURL, cfg.SessionPath, logging.WhatsApp(log, "Database"))
	if err != nil {
		return err
	}
	bot, err := whatsapp.NewBot(ctx, container, log.With("component", "whatsapp"), whatsapp.Options{
		PairPhone: cfg.PairPhone,
		QROut:     os.Stdout,
	})
	if err != nil {
		return err
	}

	proc := moderation.NewProcessor(bot.Channel(), mutes, log.With("component", "moderation"),
		moderation.WithPrefix(cfg.CommandPrefix))

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(bot, bot)

	log.Info("starting group guard", "backend", cfg.MuteBackend, "prefix", cfg.CommandPrefix, "address", cfg.Address())

	errCh := make(chan error, 2)
	go func() { errCh <- server.Run(ctx, cfg.Address(), router, log) }()
	go func() { errCh <- bot.Run(ctx, proc) }()

	// Whichever side stops first takes the other one down with it.
	first := <-errCh
	stop()
	second := <-errCh

	log.Info("group guard stopped")
	return errors.Join(first, second)
}
