package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	charmlog "github.com/charmbracelet/log"

	"github.com/goliatone/go-signup"
	"github.com/goliatone/go-signup/pkg/config"
	"github.com/goliatone/go-signup/pkg/renderers/tui"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	baseURL := flag.String("base-url", "", "registration API base URL (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	preview := flag.String("preview", "", "print the empty form with the named renderer (html, text) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	overrides := map[string]any{}
	if *baseURL != "" {
		overrides["endpoint.base_url"] = *baseURL
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	cfg, err := config.Load(ctx, config.WithFile(*configPath), config.WithOverrides(overrides))
	if err != nil {
		charmlog.Fatal("load configuration", "error", err)
	}

	app, err := signup.New(cfg)
	if err != nil {
		charmlog.Fatal("initialise", "error", err)
	}

	if *preview != "" {
		controller, err := app.NewController()
		if err != nil {
			charmlog.Fatal("build form", "error", err)
		}
		out, err := app.Render(ctx, controller, *preview, signup.RenderOptions{})
		if err != nil {
			charmlog.Fatal("render form", "error", err)
		}
		fmt.Println(string(out))
		return
	}

	session, err := app.NewSession()
	if err != nil {
		charmlog.Fatal("start session", "error", err)
	}

	if _, err := session.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Sign up cancelled.")
			os.Exit(130)
		}
		if errors.Is(err, tui.ErrRetryDeclined) {
			os.Exit(1)
		}
		charmlog.Fatal("sign up failed", "error", err)
	}
}
