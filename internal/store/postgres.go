package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// DefaultStoreTimeout bounds every PostgreSQL round trip.
const DefaultStoreTimeout = 3 * time.Second

const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool, timeout time.Duration) *PostgresStore {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	return &PostgresStore{pool: pool, timeout: timeout}
}

// Insert claims the code in issued_codes and writes the mapping in one statement.
// A code already present in the ledger yields no row, which maps to ErrConflict.
func (p *PostgresStore) Insert(ctx context.Context, originalURL string, code shortener.Code) (*shortener.ShortURL, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		WITH claimed AS (
			INSERT INTO issued_codes (short_code)
			VALUES ($2)
			ON CONFLICT (short_code) DO NOTHING
			RETURNING short_code
		)
		INSERT INTO urls (long_url, short_code)
		SELECT $1, short_code FROM claimed
		RETURNING id, short_code, long_url, created_at
	`

	url, err := scanShortURL(p.pool.QueryRow(ctx, query, originalURL, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrConflict
		}

		return nil, classify(err)
	}

	return url, nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		SELECT id, short_code, long_url, created_at
		FROM urls
		WHERE short_code = $1
	`

	url, err := scanShortURL(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, classify(err)
	}

	return url, nil
}

func (p *PostgresStore) ListAll(ctx context.Context) ([]*shortener.ShortURL, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
		SELECT id, short_code, long_url, created_at
		FROM urls
		ORDER BY created_at ASC, id ASC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}

	urls, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.ShortURL, error) {
		return scanShortURL(row)
	})
	if err != nil {
		return nil, classify(err)
	}

	if urls == nil {
		urls = []*shortener.ShortURL{}
	}

	return urls, nil
}

func (p *PostgresStore) DeleteByCode(ctx context.Context, code shortener.Code) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx, `DELETE FROM urls WHERE short_code = $1`, string(code))
	if err != nil {
		return classify(err)
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func scanShortURL(row pgx.Row) (*shortener.ShortURL, error) {
	var (
		url  shortener.ShortURL
		code string
	)

	if err := row.Scan(&url.ID, &code, &url.OriginalURL, &url.CreatedAt); err != nil {
		return nil, err
	}

	url.Code = shortener.Code(code)

	return &url, nil
}

// classify maps driver errors onto the repository taxonomy. Anything that is not a
// uniqueness violation is treated as the database being unavailable.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shortener.ErrConflict
	}

	return fmt.Errorf("%w: %w", shortener.ErrUnavailable, err)
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
