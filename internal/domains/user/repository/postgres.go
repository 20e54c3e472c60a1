package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklend-backend/internal/domains/user/model"
	"booklend-backend/pkg/database"
)

type postgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, COALESCE(display_name, ''), latitude, longitude, formatted_address,
		       location_updated_at, rating_total, rating_count, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &model.User{}
	var lat, lng *float64
	var addr *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.DisplayName, &lat, &lng, &addr,
		&u.LocationUpdatedAt, &u.RatingTotal, &u.RatingCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if lat != nil && lng != nil {
		u.Location = &model.Location{Latitude: *lat, Longitude: *lng, FormattedAddress: addr}
	}
	return u, nil
}

func (r *postgresRepo) SaveLocation(ctx context.Context, id uuid.UUID, loc model.Location) error {
	query := `
		INSERT INTO users (id, latitude, longitude, formatted_address, location_updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			latitude            = EXCLUDED.latitude,
			longitude           = EXCLUDED.longitude,
			formatted_address   = EXCLUDED.formatted_address,
			location_updated_at = EXCLUDED.location_updated_at,
			updated_at          = NOW()
	`
	_, err := r.db.Exec(ctx, query, id, loc.Latitude, loc.Longitude, loc.FormattedAddress, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddRating(ctx context.Context, rating *model.Rating) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO ratings (id, rated_id, rater_id, value)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`
		err := tx.QueryRow(ctx, insert, rating.ID, rating.RatedID, rating.RaterID, rating.Value).
			Scan(&rating.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert rating: %w", err)
		}

		// lazily create the rated user, then recompute from the source of
		// truth rather than incrementing
		upsert := `
			INSERT INTO users (id, rating_total, rating_count)
			SELECT $1,
			       COALESCE(SUM(value), 0),
			       COUNT(*)
			FROM ratings WHERE rated_id = $1
			ON CONFLICT (id) DO UPDATE SET
				rating_total = EXCLUDED.rating_total,
				rating_count = EXCLUDED.rating_count,
				updated_at   = NOW()
		`
		if _, err := tx.Exec(ctx, upsert, rating.RatedID); err != nil {
			return fmt.Errorf("failed to update rating aggregate: %w", err)
		}
		return nil
	})
}

func (r *postgresRepo) RegisterPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	query := `
		INSERT INTO push_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (user_id, token) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT token FROM push_tokens WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
