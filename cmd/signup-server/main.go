package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"

	"github.com/goliatone/go-signup"
	"github.com/goliatone/go-signup/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	noMock := flag.Bool("no-mock", false, "do not mount the in-memory registration backend")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides := map[string]any{}
	if *addr != "" {
		overrides["server.addr"] = *addr
	}
	if *noMock {
		overrides["server.mock"] = false
	}

	cfg, err := config.Load(ctx, config.WithFile(*configPath), config.WithOverrides(overrides))
	if err != nil {
		charmlog.Fatal("load configuration", "error", err)
	}

	app, err := signup.New(cfg)
	if err != nil {
		charmlog.Fatal("initialise", "error", err)
	}

	srv, err := app.NewServer()
	if err != nil {
		charmlog.Fatal("build server", "error", err)
	}

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		charmlog.Fatal("server stopped", "error", err)
	}
}
