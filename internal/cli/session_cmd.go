package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var creds domain.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, user, err := rt.app.Login.Login(cmd.Context(), creds)
			if err != nil {
				return reported(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	var reg domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account; the password is sent by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := rt.app.Register.Register(cmd.Context(), reg); err != nil {
				return reported(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt.app.Users.Logout(cmd.Context())
			return nil
		},
	}
}

func newStatusCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a valid session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if rt.app.Login.Init(ctx) != domain.RouteManagement {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			user, err := rt.app.Session.UserFromCache(ctx)
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintf(out, "Logged in as %s\n", rt.app.Session.LoggedInUsername())
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s (%s, %s)\n", user.Username, user.FullName(), user.Role)
			return nil
		},
	}
}
