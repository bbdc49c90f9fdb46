package whatsapp

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// sessionDSN picks postgres when a database URL is configured and a local
// sqlite file otherwise.
func sessionDSN(databaseURL, sessionPath string) (dialect, dsn string) {
	if databaseURL != "" {
		return "postgres", databaseURL
	}
	return "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", sessionPath)
}

// OpenSessionStore opens the whatsmeow device store holding credentials and
// signal keys, upgrading its schema when needed.
func OpenSessionStore(ctx context.Context, databaseURL, sessionPath string, log waLog.Logger) (*sqlstore.Container, error) {
	dialect, dsn := sessionDSN(databaseURL, sessionPath)
	container, err := sqlstore.New(ctx, dialect, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("open %s session store: %w", dialect, err)
	}
	return container, nil
}
