// README: Seeds the directory (users, cabs) from a YAML fixture. Existing entries are skipped.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"cabbook/internal/app"
	"cabbook/internal/config"
	"cabbook/internal/infra"
	"cabbook/internal/modules/directory"
)

func main() {
	fs := pflag.NewFlagSet("cabbook-seed", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "YAML config file (default $CABBOOK_CONFIG)")
	fixturePath := fs.StringP("fixture", "f", "", "YAML fixture with users and cabs")
	_ = fs.Parse(os.Args[1:])

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "--fixture is required")
		fs.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	level, _ := infra.ParseLogLevel(cfg.Log.Level)
	log := infra.NewLogger(os.Stderr, level)

	f, err := os.Open(*fixturePath)
	if err != nil {
		log.Error("open fixture", "err", err)
		os.Exit(1)
	}
	defer f.Close()
	fixture, err := parseFixture(f)
	if err != nil {
		log.Error("parse fixture", "path", *fixturePath, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg.DB)
	if err != nil {
		log.Error("open stores", "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	sum, err := seed(ctx, directory.NewService(stores.Directory, nil, log), fixture)
	if err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
	for _, u := range sum.Users {
		fmt.Printf("user %s\t%s\n", u.ID, u.Email)
	}
	for _, c := range sum.Cabs {
		fmt.Printf("cab  %s\t%s\n", c.ID, c.RegistrationNumber)
	}
	log.Info("seed complete", "users", len(sum.Users), "cabs", len(sum.Cabs), "skipped", sum.Skipped)
}
