package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jose-valero/shardbot/internal/domain"
)

type CallRepo struct{ db *sql.DB }

func NewCallRepo(db *sql.DB) *CallRepo { return &CallRepo{db: db} }

const callColumns = `id, sender_channel_id, sender_settings_id, receiver_channel_id, receiver_settings_id, activity_at`

func scanCalls(rows *sql.Rows) ([]domain.Call, error) {
	defer rows.Close()
	var out []domain.Call
	for rows.Next() {
		var c domain.Call
		if err := rows.Scan(&c.ID, &c.Sender.ChannelID, &c.Sender.SettingsID,
			&c.Receiver.ChannelID, &c.Receiver.SettingsID, &c.Activity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListIdle: llamadas sin actividad desde antes de 'before'.
func (r *CallRepo) ListIdle(ctx context.Context, before time.Time) ([]domain.Call, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+callColumns+`
  FROM calls
 WHERE activity_at < $1
 ORDER BY activity_at ASC
`, before)
	if err != nil {
		return nil, err
	}
	return scanCalls(rows)
}

func (r *CallRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleted(r.db.ExecContext(ctx, `DELETE FROM calls WHERE id = $1`, id))
}

// Touch refresca la actividad de la llamada en la que participa el canal.
func (r *CallRepo) Touch(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE calls SET activity_at = now()
 WHERE sender_channel_id = $1 OR receiver_channel_id = $1
`, channelID)
	return err
}

// DeleteByChannel corta las llamadas de un canal borrado.
func (r *CallRepo) DeleteByChannel(ctx context.Context, channelID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM calls
 WHERE sender_channel_id = $1 OR receiver_channel_id = $1
`, channelID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
