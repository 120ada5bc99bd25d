package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/dmitrijs2005/agenda/internal/session"
	"github.com/spf13/cobra"
)

type registerOptions struct {
	name     string
	email    string
	username string
	phone    string
}

func newRegisterCommand(get func() *Runtime) *cobra.Command {
	opts := &registerOptions{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account in the local credential store, or with the identity
provider when --auth-mode=provider. Provider accounts must verify their email
address before they can log in.`,
		Args: cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			return runRegister(cmd, rt, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&opts.username, "username", "", "username (required)")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runRegister(cmd *cobra.Command, rt *Runtime, opts *registerOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	password, err := GetPassword(out)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:     opts.name,
		Email:    opts.email,
		Username: opts.username,
		Password: password,
		Phone:    models.NonEmpty(&opts.phone),
	}

	if rt.providerMode() {
		if err := rt.core.Auth.RegisterWithVerification(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered %s. Check your inbox to verify the address.\n", user.Email)
		return nil
	}

	if _, err := rt.core.Users.Register(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registered %s.\n", user.Username)
	return nil
}

func newLoginCommand(get func() *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username|email>",
		Short: "Log in and remember the session on this device",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			return runLogin(cmd, rt, args[0])
		}),
	}
}

func runLogin(cmd *cobra.Command, rt *Runtime, identifier string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	password, err := GetPassword(out)
	if err != nil {
		return err
	}

	var current string
	if rt.providerMode() {
		acc, err := rt.core.Auth.SignIn(ctx, identifier, password)
		if errors.Is(err, common.ErrNotVerified) {
			// Keep the account so that "verify resend" can act on it.
			if acc, aerr := rt.core.Auth.Authenticate(ctx, identifier, password); aerr == nil {
				if serr := rt.saveAccount(ctx, acc); serr != nil {
					rt.log.Warn(ctx, "provider account not saved", "error", serr)
				}
			}
			return fmt.Errorf("%w: run \"agenda verify resend\" for a new link", err)
		}
		if err != nil {
			return err
		}
		if err := rt.saveAccount(ctx, acc); err != nil {
			return err
		}
		current = acc.Email
	} else {
		user, err := rt.core.Users.GetUserByIdentifier(ctx, identifier)
		if err != nil || !rt.core.Users.ValidateCredentials(ctx, user.Username, password) {
			return fmt.Errorf("%w: invalid username or password", common.ErrNotAuthenticated)
		}
		current = user.Username
	}

	if err := rt.sessions.SetCurrentUser(ctx, current); err != nil {
		return err
	}
	if err := rt.core.Contacts.Open(ctx, session.New(current)); err != nil {
		rt.log.Warn(ctx, "ownership migrations failed", "owner", current, "error", err)
	}

	fmt.Fprintf(out, "Logged in as %s.\n", current)
	return nil
}

func newLogoutCommand(get func() *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session on this device",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()

			if acc, err := rt.account(ctx); err == nil {
				if err := rt.core.Auth.SignOut(ctx, acc); err != nil {
					rt.log.Warn(ctx, "provider sign-out failed", "error", err)
				}
				if err := rt.kv.Delete(ctx, accountKey); err != nil {
					return err
				}
			}

			if err := rt.sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		}),
	}
}

func newWhoamiCommand(get func() *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			sess, err := rt.sessions.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !sess.LoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Identifier)
			return nil
		}),
	}
}

func newVerifyCommand(get func() *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Email verification of the provider account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether the email address is verified",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			acc, err := rt.account(ctx)
			if err != nil {
				return err
			}
			verified, err := rt.core.Auth.CheckVerificationStatus(ctx, acc)
			if err != nil {
				return err
			}
			if verified {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is verified.\n", acc.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not verified yet.\n", acc.Email)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resend",
		Short: "Send a new verification email",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			acc, err := rt.account(ctx)
			if err != nil {
				return err
			}
			if err := rt.core.Auth.ResendVerification(ctx, acc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verification email sent to %s.\n", acc.Email)
			return nil
		}),
	})

	return cmd
}
