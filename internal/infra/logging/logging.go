// Package logging arma el logger zerolog del proceso.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New: JSON a stdout, o consola legible si pretty. Nivel inválido cae a info.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Shard agrega el shard a todos los eventos.
func Shard(log zerolog.Logger, shardID int) zerolog.Logger {
	return log.With().Int("shard", shardID).Logger()
}
