package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/adapters/primary/http/middlewares"
	"github.com/admin/tg-bots/birthday-bot/internal/app"
)

const (
	appName   = "birthday_bot"
	envPrefix = "BIRTHDAY_BOT"
)

func main() {
	issueToken := flag.Bool("issue-admin-token", false, "print an admin API token and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "admin token lifetime")
	tokenSubject := flag.String("token-subject", "ops", "admin token subject")
	flag.Parse()

	cfg, err := app.NewEnvConfig(envPrefix)
	if err != nil {
		panic(err)
	}

	if *issueToken {
		if cfg.Admin.JWTSecret == "" {
			panic("admin jwt secret is not set")
		}
		token, err := middlewares.IssueAdminToken([]byte(cfg.Admin.JWTSecret), *tokenSubject, *tokenTTL)
		if err != nil {
			panic(err)
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(appName, cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
