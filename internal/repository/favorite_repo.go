package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

// Add appends channelName to the user's favorites and increments the
// channel's counter in one transaction. Repeated adds are recorded.
// Returns ErrNotFound if the channel does not exist.
func (r *FavoriteRepo) Add(ctx context.Context, userID, channelName string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE channels SET favorites = favorites + 1
		WHERE name = $1`, channelName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_favorites (user_id, channel_name)
		VALUES ($1, $2)`, userID, channelName)
	if err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

// Remove deletes one occurrence of channelName from the user's favorites
// and decrements the channel's counter in one transaction. Returns
// removed=false, leaving the counter untouched, when the user had no such
// favorite. Returns ErrNotFound if the channel does not exist.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, channelName string) (removed bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// Lock the channel row first so counter writers serialize on it.
	var locked string
	err = tx.QueryRow(ctx, `SELECT name FROM channels WHERE name = $1 FOR UPDATE`, channelName).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM user_favorites
		WHERE id = (
			SELECT id FROM user_favorites
			WHERE user_id = $1 AND channel_name = $2
			ORDER BY id DESC
			LIMIT 1
		)`, userID, channelName)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE channels SET favorites = favorites - 1
		WHERE name = $1`, channelName)
	if err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ListByUser returns the user's favorite channel names in the order they
// were added, duplicates included.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel_name FROM user_favorites
		WHERE user_id = $1
		ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ChannelDrift is a channel whose stored counter disagreed with its
// favorite rows before reconciliation.
type ChannelDrift struct {
	Name     string
	Stored   int
	Computed int
}

// Reconcile rewrites every channel counter that disagrees with the number
// of favorite rows referencing it and returns what it changed. Channel rows
// are locked before counting, so an Add or Remove either commits before the
// count is taken or waits until the rewrite is done.
func (r *FavoriteRepo) Reconcile(ctx context.Context) ([]ChannelDrift, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT name FROM channels ORDER BY name FOR UPDATE`); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		WITH counted AS (
			SELECT c.name, c.favorites AS stored, COUNT(f.id)::int AS computed
			FROM channels c
			LEFT JOIN user_favorites f ON f.channel_name = c.name
			GROUP BY c.name, c.favorites
		)
		UPDATE channels ch
		SET favorites = counted.computed
		FROM counted
		WHERE ch.name = counted.name AND counted.stored <> counted.computed
		RETURNING ch.name, counted.stored, counted.computed`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []ChannelDrift
	for rows.Next() {
		var d ChannelDrift
		if err := rows.Scan(&d.Name, &d.Stored, &d.Computed); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	return drifts, tx.Commit(ctx)
}
