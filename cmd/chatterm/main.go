package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/matheus3301/chatterm/internal/app"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	serverFlag := flag.String("server", "", "backend URL (overrides config)")
	flag.Parse()

	if err := run(*profileFlag, *serverFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(profileFlag, serverFlag string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
		cfg.LiveURL = config.LiveURLFor(serverFlag)
	}

	name := profile.Resolve(profileFlag, cfg)
	if err := profile.ValidateName(name); err != nil {
		return err
	}

	return app.Run(app.Params{Profile: name, Config: cfg})
}
