package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// Schema is the DDL the repository expects
//
//go:embed schema.sql
var Schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TxStarter opens transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type TxStarter interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository implements simplemedia.Repository using PostgreSQL
type Repository struct {
	db TxStarter
}

// New creates a new PostgreSQL repository
func New(db TxStarter) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies the embedded schema
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// WithTx runs fn in a read-committed transaction. Rows locked through
// Tx.LockVideo stay locked until fn returns.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx simplemedia.Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(pgtx pgx.Tx) error {
		return fn(ctx, &tx{db: pgtx})
	})
}

// handlePostgresError maps driver errors onto the package's error categories
func handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, simplemedia.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "video_likes") {
				return simplemedia.ErrAlreadyLiked
			}
			return fmt.Errorf("%s: duplicate entry (%s)", operation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "category") {
				return simplemedia.ErrCategoryNotFound
			}
			return fmt.Errorf("%s: referenced record %w", operation, simplemedia.ErrNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: required field %s is missing", operation, pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w: constraint %s", operation, simplemedia.ErrValidation, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required", operation)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// notFound maps pgx.ErrNoRows to a specific not-found error
func notFound(operation string, err error, missing error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return missing
	}
	return handlePostgresError(operation, err)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
