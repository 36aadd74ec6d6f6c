package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/compose"
	"github.com/matheus3301/chatterm/internal/live"
)

func addLogin(root *cobra.Command, opts *rootOptions) {
	req := api.LoginRequest{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session cookie in the profile",
		Example: `
chatctl login --email ada@example.com
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				if err := readPassword(&req.Password); err != nil {
					return err
				}
				if err := req.Validate(); err != nil {
					return err
				}
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				u, err := e.Client.Login(ctx, req)
				if err != nil {
					return errors.New(api.UserMessage(err, "login failed"))
				}
				printUser(u, opts.JSON)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when empty)")
	root.AddCommand(cmd)
}

func addSignup(root *cobra.Command, opts *rootOptions) {
	req := api.SignupRequest{}
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store its session cookie",
		Example: `
chatctl signup --name "Ada Lovelace" --email ada@example.com
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				if err := readPassword(&req.Password); err != nil {
					return err
				}
				if err := req.Validate(); err != nil {
					return err
				}
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				u, err := e.Client.Signup(ctx, req)
				if err != nil {
					return errors.New(api.UserMessage(err, "signup failed"))
				}
				if !opts.JSON {
					fmt.Println("Account created successfully!")
				}
				printUser(u, opts.JSON)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when empty)")
	root.AddCommand(cmd)
}

func addLogout(root *cobra.Command, opts *rootOptions) {
	root.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				if err := e.Client.Logout(ctx); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				fmt.Println("Logged out successfully")
				return nil
			})
		},
	})
}

func addWhoami(root *cobra.Command, opts *rootOptions) {
	var qr bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the stored session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				u, err := checkSession(ctx, e)
				if err != nil {
					return err
				}
				printUser(u, opts.JSON)
				if qr && !opts.JSON {
					content := lo.Ternary(u.ProfilePic != "", u.ProfilePic, u.ID)
					code, err := qrcode.New(content, qrcode.Medium)
					if err != nil {
						return fmt.Errorf("avatar qr: %w", err)
					}
					fmt.Print(code.ToSmallString(false))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&qr, "qr", false, "print the avatar reference as a QR code")
	root.AddCommand(cmd)
}

func addUsers(root *cobra.Command, opts *rootOptions) {
	root.AddCommand(&cobra.Command{
		Use:     "users",
		Aliases: []string{"ls"},
		Short:   "List conversation partners",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				users, err := e.Client.ListUsers(ctx)
				if err != nil {
					return fmt.Errorf("fetch users: %w", err)
				}
				if opts.JSON {
					outputJSON(users)
					return nil
				}
				if len(users) == 0 {
					fmt.Println("No users found")
					return nil
				}
				for _, u := range users {
					fmt.Printf("%-26s %-24s %s\n", u.ID, u.DisplayName(), u.Email)
				}
				return nil
			})
		},
	})
}

func addHistory(root *cobra.Command, opts *rootOptions) {
	root.AddCommand(&cobra.Command{
		Use:   "history <user-id>",
		Short: "Print the conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				me, err := checkSession(ctx, e)
				if err != nil {
					return err
				}
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				msgs, err := e.Client.ListMessages(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetch messages: %w", err)
				}
				if opts.JSON {
					outputJSON(msgs)
					return nil
				}
				if len(msgs) == 0 {
					fmt.Println("No messages yet")
					return nil
				}
				for _, m := range msgs {
					printMessage(m, me.ID)
				}
				return nil
			})
		},
	})
}

func addSend(root *cobra.Command, opts *rootOptions) {
	var image string
	cmd := &cobra.Command{
		Use:   "send <user-id> [text...]",
		Short: "Send a text and/or image message",
		Example: `
chatctl send 65f1c0ffee hello there
chatctl send 65f1c0ffee --image ./cat.png
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(ctx context.Context, e *env) error {
				composer := compose.New(e.Params.Config.MaxImageBytes)
				composer.SetText(strings.Join(args[1:], " "))
				if image != "" {
					if err := composer.Attach(image); err != nil {
						return err
					}
				}
				ctx, cancel := requestContext(ctx, e)
				defer cancel()
				msg, err := composer.Submit(ctx, args[0], e.Client)
				if err != nil {
					return err
				}
				if opts.JSON {
					outputJSON(msg)
					return nil
				}
				fmt.Printf("sent %s\n", msg.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "path of an image to attach")
	root.AddCommand(cmd)
}

func addWatch(root *cobra.Command, opts *rootOptions) {
	root.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Stream presence and incoming messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withEnv(ctx, opts, func(ctx context.Context, e *env) error {
				me, err := checkSession(ctx, e)
				if err != nil {
					return err
				}
				handler := live.HandlerFuncs{
					Presence: func(p live.PresenceUpdate) {
						if opts.JSON {
							outputJSON(p)
							return
						}
						fmt.Printf("online (%d): %s\n", len(p.Online), strings.Join(p.Online, ", "))
					},
					Message: func(m live.NewMessage) {
						if opts.JSON {
							outputJSON(m.Message)
							return
						}
						printMessage(m.Message, me.ID)
					},
				}
				conn, err := live.Dial(ctx, live.Options{
					URL:    e.Params.Config.LiveURL,
					UserID: me.ID,
					Jar:    e.Jar,
					Logger: e.Logger.Named("live"),
				}, handler)
				if err != nil {
					return err
				}
				defer func() { _ = conn.Close() }()

				select {
				case <-conn.Done():
					if err := conn.Err(); err != nil {
						return fmt.Errorf("live channel closed: %w", err)
					}
				case <-ctx.Done():
				}
				e.Logger.Info("watch ended")
				return nil
			})
		},
	})
}

func checkSession(ctx context.Context, e *env) (*api.User, error) {
	ctx, cancel := requestContext(ctx, e)
	defer cancel()
	u, err := e.Client.CheckSession(ctx)
	if errors.Is(err, api.ErrUnauthorized) {
		return nil, errors.New("not logged in; run chatctl login")
	}
	if err != nil {
		e.Logger.Debug("check session failed", zap.Error(err))
		return nil, fmt.Errorf("check session: %w", err)
	}
	return u, nil
}

// readPassword prompts for a password on the terminal unless one was given.
func readPassword(dst *string) error {
	if *dst != "" {
		return nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*dst = string(b)
		return nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	*dst = strings.TrimRight(line, "\r\n")
	return nil
}

func printUser(u *api.User, jsonOut bool) {
	if jsonOut {
		outputJSON(u)
		return
	}
	fmt.Printf("ID:     %s\n", u.ID)
	fmt.Printf("Name:   %s\n", u.DisplayName())
	if u.Email != "" {
		fmt.Printf("Email:  %s\n", u.Email)
	}
	if u.ProfilePic != "" {
		fmt.Printf("Avatar: %s\n", u.ProfilePic)
	}
}

func printMessage(m api.Message, selfID string) {
	who := lo.Ternary(m.SenderID == selfID, "me", m.SenderID)
	stamp := "--:--"
	if !m.CreatedAt.IsZero() {
		stamp = m.CreatedAt.Local().Format("15:04")
	}
	body := m.Text
	if m.Image != "" {
		body = strings.TrimSpace(body + " [image]")
	}
	fmt.Printf("%s  %-26s %s\n", stamp, who, body)
}
