// migrate copies the chat state from one storage backend to another.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/store"
)

func main() {
	from := flag.String("from", "", "Source backend: sqlite, bolt, redis or postgres")
	to := flag.String("to", "", "Destination backend: sqlite, bolt, redis or postgres")
	sqlitePath := flag.String("sqlite", "./data/chat.db", "SQLite file")
	boltPath := flag.String("bolt", "./data/chat.bolt", "Bolt file")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	redisURL := flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.Parse()

	if *from == "" || *to == "" || *from == *to {
		fmt.Fprintln(os.Stderr, "Usage: migrate -from <backend> -to <backend> [-sqlite path] [-bolt path] [-database-url url] [-redis-url url]")
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	opts := func(backend string) store.Options {
		return store.Options{
			Backend:     backend,
			SQLitePath:  *sqlitePath,
			BoltPath:    *boltPath,
			DatabaseURL: *databaseURL,
			RedisURL:    *redisURL,
		}
	}

	src, err := store.Open(ctx, opts(*from))
	if err != nil {
		logger.Fatal().Err(err).Str("backend", *from).Msg("open source failed")
	}
	defer src.Close()

	dst, err := store.Open(ctx, opts(*to))
	if err != nil {
		logger.Fatal().Err(err).Str("backend", *to).Msg("open destination failed")
	}
	defer dst.Close()

	n, err := store.Copy(ctx, dst, src, chat.Keys())
	if err != nil {
		logger.Fatal().Err(err).Int("copied", n).Msg("migration failed")
	}

	logger.Info().
		Str("from", *from).
		Str("to", *to).
		Int("keys", n).
		Msg("migration completed")
}
