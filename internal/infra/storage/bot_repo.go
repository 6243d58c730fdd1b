package storage

import (
	"context"
	"database/sql"

	"github.com/jose-valero/shardbot/internal/domain"
)

// BotRepo: estado global del bot (fila única 'settings').
type BotRepo struct{ db *sql.DB }

func NewBotRepo(db *sql.DB) *BotRepo { return &BotRepo{db: db} }

// PendingReboot devuelve el mensaje "reiniciando..." a completar, si hay uno.
func (r *BotRepo) PendingReboot(ctx context.Context) (domain.Reboot, bool, error) {
	var ch, msg sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT reboot_channel_id, reboot_message_id FROM bot_state WHERE id = 'settings'
`).Scan(&ch, &msg)
	if err == sql.ErrNoRows {
		return domain.Reboot{}, false, nil
	}
	if err != nil {
		return domain.Reboot{}, false, err
	}
	if !ch.Valid || !msg.Valid {
		return domain.Reboot{}, false, nil
	}
	return domain.Reboot{ChannelID: ch.String, MessageID: msg.String}, true, nil
}

func (r *BotRepo) ClearReboot(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE bot_state SET reboot_channel_id = NULL, reboot_message_id = NULL WHERE id = 'settings'
`)
	return err
}
