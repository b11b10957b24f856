// README: Smoke runner; checks DB/Redis connectivity and drives the booking API end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	BaseURL     string
	Token       string
	CabID       string
	DSN         string
	RedisAddr   string
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func main() {
	cfg := loadConfig(os.Args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case statusPass:
			pass++
		case statusFail:
			fail++
		case statusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

func loadConfig(args []string) Config {
	var cfg Config
	fs := pflag.NewFlagSet("cabbook-smoke", pflag.ExitOnError)
	fs.StringVar(&cfg.BaseURL, "base-url", envOrDefault("CABBOOK_SMOKE_BASE_URL", "http://localhost:8080"), "API base URL")
	fs.StringVar(&cfg.Token, "token", os.Getenv("CABBOOK_SMOKE_TOKEN"), "access token sent as x-auth-token")
	fs.StringVar(&cfg.CabID, "cab-id", os.Getenv("CABBOOK_SMOKE_CAB_ID"), "existing cab id used for bookings")
	fs.StringVar(&cfg.DSN, "dsn", os.Getenv("CABBOOK_DB_DSN"), "Postgres DSN (empty skips DB checks)")
	fs.StringVar(&cfg.RedisAddr, "redis", os.Getenv("CABBOOK_REDIS_ADDR"), "Redis address (empty skips Redis checks)")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail when any case is skipped")
	fs.DurationVar(&cfg.Timeout, "timeout", 60*time.Second, "total timeout")
	fs.IntVar(&cfg.Concurrency, "concurrency", 8, "parallel duplicate creates and load workers")
	fs.DurationVar(&cfg.Duration, "duration", 0, "list load duration (0 skips the load case)")
	_ = fs.Parse(args)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
