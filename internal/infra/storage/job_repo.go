package storage

import (
	"context"
	"database/sql"

	"github.com/jose-valero/shardbot/internal/domain"
)

type JobRepo struct{ db *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{db: db} }

const jobColumns = `id, type, end_at, guild_id, channel_id, message_id, author_id, content, created_at`

func scanJobs(rows *sql.Rows) ([]domain.Job, error) {
	defer rows.Close()
	var out []domain.Job
	for rows.Next() {
		var j domain.Job
		var typ string
		if err := rows.Scan(&j.ID, &typ, &j.End, &j.GuildID, &j.ChannelID, &j.MessageID, &j.AuthorID, &j.Content, &j.CreatedAt); err != nil {
			return nil, err
		}
		j.Type = domain.JobType(typ)
		out = append(out, j)
	}
	return out, rows.Err()
}

// List: todos los jobs (el scheduler filtra los vencidos).
func (r *JobRepo) List(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+jobColumns+`
  FROM jobs
 ORDER BY end_at ASC
`)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// Delete es idempotente; devuelve true sólo para quien efectivamente borró la fila.
func (r *JobRepo) Delete(ctx context.Context, id string) (bool, error) {
	return deleted(r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id))
}

func (r *JobRepo) Upsert(ctx context.Context, j domain.Job) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO jobs (id, type, end_at, guild_id, channel_id, message_id, author_id, content)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  type       = EXCLUDED.type,
  end_at     = EXCLUDED.end_at,
  guild_id   = EXCLUDED.guild_id,
  channel_id = EXCLUDED.channel_id,
  message_id = EXCLUDED.message_id,
  author_id  = EXCLUDED.author_id,
  content    = EXCLUDED.content
`, j.ID, string(j.Type), j.End, j.GuildID, j.ChannelID, j.MessageID, j.AuthorID, j.Content)
	return err
}
