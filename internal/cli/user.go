package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Look up a user's public details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rootOpts.context(cmd)
			defer cancel()

			c, err := rootOpts.apiClient(ctx)
			if err != nil {
				return err
			}
			u, err := c.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			return rootOpts.emit(cmd.OutOrStdout(), u, func(w io.Writer) error {
				if u == nil {
					_, err := fmt.Fprintf(w, "no user %q\n", args[0])
					return err
				}
				_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Phone)
				return err
			})
		},
	}
}
