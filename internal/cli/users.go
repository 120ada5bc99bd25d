package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUsersCommand(get func() *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer stored users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every stored user",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			list, err := rt.core.Users.ListAllUsers(cmd.Context())
			if err != nil {
				return err
			}
			writeUsers(cmd.OutOrStdout(), list)
			return nil
		}),
	})

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored user",
		Long:  "Delete every stored user. Contacts are kept.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			out := cmd.OutOrStdout()
			if !yes {
				answer, err := GetSimpleText(inputReader(cmd), "Delete all users? Type \"yes\" to confirm.", out)
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}
			if err := rt.core.Users.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "All users deleted.")
			return nil
		}),
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(clearCmd)

	return cmd
}
