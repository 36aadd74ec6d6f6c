package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/app"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/store"
)

type rootOptions struct {
	Profile string
	Server  string
	JSON    bool
}

// env is everything a command needs to talk to the backend as the
// profile's stored session.
type env struct {
	Params app.Params
	Client *api.Client
	Jar    *store.Jar
	Logger *zap.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Scriptable control client for a chatterm profile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "", "profile name (overrides config default)")
	root.PersistentFlags().StringVar(&opts.Server, "server", "", "backend URL (overrides config)")
	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	addLogin(root, opts)
	addSignup(root, opts)
	addLogout(root, opts)
	addWhoami(root, opts)
	addUsers(root, opts)
	addHistory(root, opts)
	addSend(root, opts)
	addWatch(root, opts)
	return root
}

// resolve loads .env, config and environment, then picks the profile.
func resolve(opts *rootOptions) (app.Params, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return app.Params{}, fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return app.Params{}, err
	}
	if opts.Server != "" {
		cfg.ServerURL = opts.Server
		cfg.LiveURL = config.LiveURLFor(opts.Server)
	}

	name := profile.Resolve(opts.Profile, cfg)
	if err := profile.ValidateName(name); err != nil {
		return app.Params{}, err
	}
	return app.Params{Profile: name, Config: cfg, Stderr: true}, nil
}

// withEnv builds the shared core for the resolved profile, runs fn with a
// request-scoped context and tears the core down again.
func withEnv(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, e *env) error) error {
	p, err := resolve(opts)
	if err != nil {
		return err
	}

	e := &env{Params: p}
	fxApp := fx.New(
		app.Core(p),
		fx.Populate(&e.Client, &e.Jar, &e.Logger),
	)
	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()

	return fn(ctx, e)
}

// requestContext bounds a single round trip by the configured timeout.
func requestContext(ctx context.Context, e *env) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.Params.Config.RequestTimeout)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
