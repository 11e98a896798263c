package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steve2482/simspeedserver/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// ListChannels returns every tracked channel ordered by internal name.
// This is the directory order the aggregation endpoints preserve.
func (r *ChannelRepo) ListChannels(ctx context.Context) ([]model.Channel, error) {
	query := `
		SELECT name, display_name, youtube_id, favorites, category
		FROM channels
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []model.Channel{}
	for rows.Next() {
		var ch model.Channel
		if err := rows.Scan(&ch.Name, &ch.DisplayName, &ch.YouTubeID, &ch.Favorites, &ch.Category); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// FindByName returns the channel with the given internal name.
func (r *ChannelRepo) FindByName(ctx context.Context, name string) (*model.Channel, error) {
	query := `
		SELECT name, display_name, youtube_id, favorites, category
		FROM channels
		WHERE name = $1`

	var ch model.Channel
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&ch.Name, &ch.DisplayName, &ch.YouTubeID, &ch.Favorites, &ch.Category,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ch, nil
}

// Upsert inserts or refreshes a channel's catalog fields. The favorite
// counter is never overwritten by seeding.
func (r *ChannelRepo) Upsert(ctx context.Context, ch model.Channel) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channels (name, display_name, youtube_id, favorites, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    youtube_id   = EXCLUDED.youtube_id,
		    category     = EXCLUDED.category`,
		ch.Name, ch.DisplayName, ch.YouTubeID, ch.Favorites, ch.Category)
	return err
}
