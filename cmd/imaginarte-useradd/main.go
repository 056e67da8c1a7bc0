// Command imaginarte-useradd provisions a staff account.
//
//	imaginarte-useradd -username loja -password s3gredo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imaginarte/gestao/internal/config"
	"github.com/imaginarte/gestao/internal/db"
	"github.com/imaginarte/gestao/internal/logging"
	"github.com/imaginarte/gestao/internal/user"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "password (stored as a bcrypt hash)")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: imaginarte-useradd -username NAME -password PASS")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, "console")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal().Err(err).Msg("migrations")
		}
	}
	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	u, err := user.NewService(user.NewPGRepo(pool)).Register(ctx, *username, *password)
	if err != nil {
		log.Error().Err(err).Str("username", *username).Msg("could not create user")
		pool.Close()
		os.Exit(1)
	}
	fmt.Printf("created user %s (%s)\n", u.Username, u.ID)
}
