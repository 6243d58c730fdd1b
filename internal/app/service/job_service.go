package service

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jose-valero/shardbot/internal/domain"
)

const maxJobDelay = 30 * 24 * time.Hour

var (
	ErrInvalidDelay = errors.New("job: delay out of range")
	ErrEmptyContent = errors.New("job: empty content")
	ErrGuildOnly    = errors.New("job: polls need a guild")
)

// JobService crea los jobs que después vence el scheduler.
type JobService struct {
	jobs JobRepo
	now  func() time.Time
}

func NewJobService(jobs JobRepo) *JobService {
	return &JobService{jobs: jobs, now: time.Now}
}

type RemindInput struct {
	GuildID   string // vacío en DMs
	ChannelID string
	AuthorID  string
	Content   string
	In        time.Duration
}

type PollInput struct {
	GuildID   string
	ChannelID string
	MessageID string // mensaje del poll ya publicado, con las reacciones
	AuthorID  string
	Question  string
	In        time.Duration
}

func (s *JobService) Remind(ctx context.Context, in RemindInput) (domain.Job, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return domain.Job{}, ErrEmptyContent
	}
	return s.create(ctx, domain.Job{
		Type:      domain.JobRemind,
		GuildID:   in.GuildID,
		ChannelID: in.ChannelID,
		AuthorID:  in.AuthorID,
		Content:   content,
	}, in.In)
}

func (s *JobService) Poll(ctx context.Context, in PollInput) (domain.Job, error) {
	if in.GuildID == "" {
		return domain.Job{}, ErrGuildOnly
	}
	q := strings.TrimSpace(in.Question)
	if q == "" {
		return domain.Job{}, ErrEmptyContent
	}
	return s.create(ctx, domain.Job{
		Type:      domain.JobPoll,
		GuildID:   in.GuildID,
		ChannelID: in.ChannelID,
		MessageID: in.MessageID,
		AuthorID:  in.AuthorID,
		Content:   q,
	}, in.In)
}

func (s *JobService) create(ctx context.Context, j domain.Job, in time.Duration) (domain.Job, error) {
	if in <= 0 || in > maxJobDelay {
		return domain.Job{}, ErrInvalidDelay
	}
	now := s.now()
	j.ID = uuid.NewString()
	j.End = now.Add(in)
	j.CreatedAt = now
	if err := s.jobs.Upsert(ctx, j); err != nil {
		return domain.Job{}, errors.Wrapf(err, "guardando job %s", j.Type)
	}
	return j, nil
}

// ValidDelay: para que el comando valide antes de publicar el mensaje del poll.
func ValidDelay(d time.Duration) bool { return d > 0 && d <= maxJobDelay }
