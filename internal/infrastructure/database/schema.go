package database

import (
	"context"
	"fmt"
)

// Schema keeps the DDL next to the code that queries it. Applied at startup;
// every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                  UUID PRIMARY KEY,
    display_name        TEXT,
    latitude            DOUBLE PRECISION,
    longitude           DOUBLE PRECISION,
    formatted_address   TEXT,
    location_updated_at TIMESTAMPTZ,
    rating_total        NUMERIC(10,2) NOT NULL DEFAULT 0,
    rating_count        INTEGER       NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS books (
    id                    UUID PRIMARY KEY,
    title                 TEXT        NOT NULL,
    author                TEXT        NOT NULL,
    image_url             TEXT        NOT NULL,
    owner_id              UUID        NOT NULL,
    status                TEXT        NOT NULL DEFAULT 'available',
    borrower_id           UUID,
    current_loan_id       UUID,
    requested_at          TIMESTAMPTZ,
    cancelled_by_borrower BOOLEAN     NOT NULL DEFAULT FALSE,
    latitude              DOUBLE PRECISION NOT NULL,
    longitude             DOUBLE PRECISION NOT NULL,
    formatted_address     TEXT,
    geohash               TEXT        NOT NULL,
    search_tokens         TEXT[]      NOT NULL DEFAULT '{}',
    version               BIGINT      NOT NULL DEFAULT 1,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_books_geohash  ON books (geohash);
CREATE INDEX IF NOT EXISTS idx_books_owner    ON books (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_books_borrower ON books (borrower_id);
CREATE INDEX IF NOT EXISTS idx_books_tokens   ON books USING GIN (search_tokens);

CREATE TABLE IF NOT EXISTS loans (
    id           UUID PRIMARY KEY,
    -- no FK: loan history must survive the book row being deleted
    book_id      UUID        NOT NULL,
    owner_id     UUID        NOT NULL,
    borrower_id  UUID        NOT NULL,
    status       TEXT        NOT NULL,
    active       BOOLEAN     NOT NULL DEFAULT FALSE,
    requested_at TIMESTAMPTZ,
    accepted_at  TIMESTAMPTZ,
    rejected_at  TIMESTAMPTZ,
    cancelled_at TIMESTAMPTZ,
    loaned_at    TIMESTAMPTZ,
    returned_at  TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans (borrower_id, created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_one_active
    ON loans (book_id) WHERE active;

CREATE TABLE IF NOT EXISTS ratings (
    id         UUID PRIMARY KEY,
    rated_id   UUID        NOT NULL,
    rater_id   UUID        NOT NULL,
    value      INTEGER     NOT NULL CHECK (value BETWEEN 1 AND 5),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ratings_rated ON ratings (rated_id);

CREATE TABLE IF NOT EXISTS push_tokens (
    user_id    UUID        NOT NULL,
    token      TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, token)
);

CREATE TABLE IF NOT EXISTS notifications (
    id         UUID PRIMARY KEY,
    user_id    UUID        NOT NULL,
    type       TEXT        NOT NULL,
    title      TEXT        NOT NULL,
    body       TEXT        NOT NULL,
    book_id    UUID,
    unread     BOOLEAN     NOT NULL DEFAULT TRUE,
    read_at    TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user
    ON notifications (user_id, created_at DESC);
`

// Migrate applies the schema.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
