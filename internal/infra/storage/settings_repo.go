package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"

	"github.com/jose-valero/shardbot/internal/domain"
)

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get devuelve ErrNotFound si no hay documento; el caller decide el default.
func (r *SettingsRepo) Get(ctx context.Context, id string) (domain.Settings, error) {
	var s domain.Settings
	var radio sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT id, locale, prefix, ignored, radio_channel_id, updated_at
  FROM settings
 WHERE id = $1
`, id).Scan(&s.ID, &s.Locale, &s.Prefix, pq.Array(&s.Ignored), &radio, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Settings{}, ErrNotFound
	}
	if err != nil {
		return domain.Settings{}, err
	}
	s.RadioChannel = radio.String
	return s, nil
}

// ForgetChannel saca el canal de ignorados y de la radio del guild. Sin documento, no hace nada.
func (r *SettingsRepo) ForgetChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE settings
   SET ignored          = array_remove(ignored, $2),
       radio_channel_id = CASE WHEN radio_channel_id = $2 THEN NULL ELSE radio_channel_id END,
       updated_at       = now()
 WHERE id = $1
   AND ($2 = ANY(ignored) OR radio_channel_id = $2)
`, guildID, channelID)
	return err
}
