package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema is every table the service owns.  The showtimes primary key is
// the row identity tuple; end_time stays out of it so a runtime correction
// replaces the row instead of duplicating it.  Deleted showtimes keep
// their own rowid, which captures the source removing and re-adding the
// exact same showtime more than once.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS showtimes (
		theater         VARCHAR(128) NOT NULL,
		title           VARCHAR(255) NOT NULL,
		format          VARCHAR(64)  NOT NULL DEFAULT '',
		is_open_caption TINYINT      NOT NULL,
		no_alist        TINYINT      NOT NULL,
		start_time      DATETIME     NOT NULL,
		end_time        DATETIME     NOT NULL,
		create_time     DATETIME     NOT NULL,
		PRIMARY KEY (theater, title, format, is_open_caption, no_alist, start_time)
	)`,
	`CREATE TABLE IF NOT EXISTS deleted_showtimes (
		id              BIGINT AUTO_INCREMENT PRIMARY KEY,
		theater         VARCHAR(128) NOT NULL,
		title           VARCHAR(255) NOT NULL,
		format          VARCHAR(64)  NOT NULL DEFAULT '',
		is_open_caption TINYINT      NOT NULL,
		no_alist        TINYINT      NOT NULL,
		start_time      DATETIME     NOT NULL,
		end_time        DATETIME     NOT NULL,
		delete_time     DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS moviemetadata (
		title  VARCHAR(255) NOT NULL PRIMARY KEY,
		hidden TINYINT      NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		theater         VARCHAR(128) NOT NULL,
		title           VARCHAR(255) NOT NULL,
		format          VARCHAR(64)  NOT NULL DEFAULT '',
		is_open_caption TINYINT      NOT NULL,
		no_alist        TINYINT      NOT NULL,
		start_time      DATETIME     NOT NULL,
		end_time        DATETIME     NOT NULL,
		create_time     DATETIME     NOT NULL,
		PRIMARY KEY (theater, title, format, is_open_caption, no_alist, start_time)
	)`,
}

// InitSchema creates the service's tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
