// Package database opens the MySQL handle shared by all repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const pingTimeout = 5 * time.Second

// Open builds the DSN, connects to MySQL and verifies the connection with
// a bounded ping.  parseTime=true makes DATETIME/TIMESTAMP columns scan
// into time.Time, and loc=UTC keeps those values consistent across hosts;
// fecha and hora columns are unaffected since the repositories format
// them to strings in SQL.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	cred := user
	if pass != "" {
		cred = user + ":" + pass
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Booking transactions hold row locks only briefly, so a modest pool
	// is enough; recycling connections keeps long-lived ones from pinning
	// stale server state.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
