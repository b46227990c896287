// Package cli implements the storefront command line: the server itself and
// a few operator commands that talk to a running server over its JSON API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/client"
	"storefront/internal/config"
	applog "storefront/internal/log"
)

var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string
	API      string
	Email    string
	Password string
	Timeout  time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront server and admin tooling",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			// stdout carries command output; serve takes it back for its logs.
			applog.SetOutput(cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.API, "api", "", "API base URL (default API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "log in with this email first")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "password for --email")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall timeout for API commands")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

// apiClient builds a client for the configured server, logged in when
// credentials were given.
func (o *RootOptions) apiClient(ctx context.Context) (*client.Client, error) {
	base := o.API
	if base == "" {
		base = config.Load().APIBaseURL
	}
	c := client.New(base, client.WithRateLimit(10, 5))
	if o.Email != "" {
		if _, err := c.Login(ctx, o.Email, o.Password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	return c, nil
}

func (o *RootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.Timeout)
}

// emit writes v as indented JSON or through text.
func (o *RootOptions) emit(w io.Writer, v any, text func(io.Writer) error) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
