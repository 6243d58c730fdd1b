package storage

import (
	"context"
	"database/sql"

	"github.com/jose-valero/shardbot/internal/domain"
)

type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) *FeedRepo { return &FeedRepo{db: db} }

const feedColumns = `id, guild_id, channel_id, url, last_item, created_at`

func (r *FeedRepo) List(ctx context.Context) ([]domain.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM rss_feeds ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return scanFeeds(rows)
}

func scanFeeds(rows *sql.Rows) ([]domain.Feed, error) {
	defer rows.Close()

	var out []domain.Feed
	for rows.Next() {
		var f domain.Feed
		if err := rows.Scan(&f.ID, &f.GuildID, &f.ChannelID, &f.URL, &f.LastItem, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FeedRepo) SetLastItem(ctx context.Context, id, item string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rss_feeds SET last_item = $2 WHERE id = $1`, id, item)
	return err
}

func (r *FeedRepo) DeleteByChannel(ctx context.Context, channelID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rss_feeds WHERE channel_id = $1`, channelID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
