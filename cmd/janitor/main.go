package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Purga lo que el scheduler ya no va a levantar: jobs vencidos hace más de una semana
// (shard caído durante días) y llamadas sin actividad desde hace un día.
const (
	purgeJobs  = `DELETE FROM jobs WHERE end_at < now() - INTERVAL '7 days';`
	purgeCalls = `DELETE FROM calls WHERE activity_at < now() - INTERVAL '1 day';`
)

var log = zerolog.New(os.Stdout).With().Timestamp().Str("component", "janitor").Logger()

func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var jobs, calls int64
	if tag, err := pool.Exec(cctx, purgeJobs); err != nil {
		log.Warn().Err(err).Msg("purge jobs")
	} else {
		jobs = tag.RowsAffected()
	}
	if tag, err := pool.Exec(cctx, purgeCalls); err != nil {
		log.Warn().Err(err).Msg("purge calls")
	} else {
		calls = tag.RowsAffected()
	}
	log.Info().Int64("jobs", jobs).Int64("calls", calls).Msg("purge done")

	return fmt.Sprintf("ok jobs=%d calls=%d", jobs, calls), nil
}

func main() { lambda.Start(handler) }
