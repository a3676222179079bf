// internal/store/mysql.go
//
// MySQL-backed submission store over sqlx.
//
// Context
//   The pipeline performs exactly one Put per accepted submission; the
//   accepted-response contract implies durability, so a failed Put fails
//   the whole request.  Submissions land in the `form_submission` table,
//   one row per record, with the form data serialized as JSON.  The
//   default driver is go-sql-driver/mysql, which also works with MariaDB
//   when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(dsn)                              – quick helper with conservative pool sizes.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//	NewMySQL(db)                           – wrap an existing pool (tests use sqlmock).
//
// Both Open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the pool when done.
//
//------------------------------------------------------------------------------

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/gadgetcloud-io/forms-service/internal/submission"
)

// putTimeout bounds the blocking insert so a slow database cannot stall the
// handler indefinitely.
const putTimeout = 5 * time.Second

const insertSQL = `
	INSERT INTO form_submission
	    (submission_id, ts, ts_iso, client, form_type, form_data,
	     source_ip, user_agent, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// MySQL implements Store on a sqlx pool.
type MySQL struct {
	db *sqlx.DB
}

// NewMySQL wraps an existing pool.
func NewMySQL(db *sqlx.DB) *MySQL { return &MySQL{db: db} }

// Open returns a ready MySQL store with sane pool defaults: 15 max open,
// 5 idle, and a 30-minute connection lifetime.
func Open(dsn string) (*MySQL, error) {
	return OpenWithOptions(dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*MySQL, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &MySQL{db: db}, nil
}

// Close releases the underlying pool.
func (s *MySQL) Close() error { return s.db.Close() }

// Put inserts one submission row.  The write is attempted exactly once; the
// caller decides how an error maps to the response.
func (s *MySQL) Put(ctx context.Context, sub *submission.Submission) error {
	data, err := json.Marshal(sub.FormData)
	if err != nil {
		return fmt.Errorf("store: encode form data: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, insertSQL,
		sub.SubmissionID,
		sub.Timestamp,
		sub.TimestampISO,
		sub.Client,
		sub.FormType,
		data,
		sub.SourceIP,
		sub.UserAgent,
		sub.Status,
	)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", sub.SubmissionID, err)
	}
	return nil
}
