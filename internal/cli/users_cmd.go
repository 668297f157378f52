package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

var errSessionRequired = errors.New("not logged in")

// withSession runs fn only while the stored session is valid.
func withSession(rt *runtime, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !rt.app.Session.IsSessionValid(cmd.Context()) {
			rt.notes.Notify(domain.NewNotification(domain.NotificationError, domain.MsgLoginRequired))
			return reported(errSessionRequired)
		}
		return fn(cmd, args)
	}
}

func newUsersCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUsersListCommand(rt),
		newUsersSearchCommand(rt),
		newUsersAddCommand(rt),
		newUsersUpdateCommand(rt),
		newUsersDeleteCommand(rt),
		newUsersResetPasswordCommand(rt),
		newUsersUploadImageCommand(rt),
	)
	return cmd
}

func newUsersListCommand(rt *runtime) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users from the cached directory",
		Args:  cobra.NoArgs,
		RunE: withSession(rt, func(cmd *cobra.Command, _ []string) error {
			var (
				users []domain.User
				err   error
			)
			if refresh {
				users, err = rt.app.Users.GetUsers(cmd.Context(), true)
			} else {
				users, err = rt.app.Users.Search(cmd.Context(), "")
			}
			if err != nil {
				return reported(err)
			}
			return printUsers(cmd.OutOrStdout(), users)
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the directory from the backend first")
	return cmd
}

func newUsersSearchCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the cached directory by name, username, email or user id",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rt, func(cmd *cobra.Command, args []string) error {
			users, err := rt.app.Users.Search(cmd.Context(), args[0])
			if err != nil {
				return reported(err)
			}
			return printUsers(cmd.OutOrStdout(), users)
		}),
	}
}

func newUsersAddCommand(rt *runtime) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		Args:  cobra.NoArgs,
		RunE: withSession(rt, func(cmd *cobra.Command, _ []string) error {
			form, err := f.form()
			if err != nil {
				return err
			}
			if _, err := rt.app.Users.AddUser(cmd.Context(), form); err != nil {
				return reported(err)
			}
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func newUsersUpdateCommand(rt *runtime) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "update <current-username>",
		Short: "Update the user currently known as <current-username>",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rt, func(cmd *cobra.Command, args []string) error {
			form, err := f.form()
			if err != nil {
				return err
			}
			form.CurrentUsername = args[0]
			if _, err := rt.app.Users.UpdateUser(cmd.Context(), form); err != nil {
				return reported(err)
			}
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func newUsersDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rt, func(cmd *cobra.Command, args []string) error {
			if _, err := rt.app.Users.DeleteUser(cmd.Context(), args[0]); err != nil {
				return reported(err)
			}
			return nil
		}),
	}
}

func newUsersResetPasswordCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Mail a new password to the user with <email>",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rt, func(cmd *cobra.Command, args []string) error {
			if _, err := rt.app.Users.ResetPassword(cmd.Context(), args[0]); err != nil {
				return reported(err)
			}
			return nil
		}),
	}
}

func newUsersUploadImageCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <username> <file>",
		Short: "Replace a user's profile image",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(rt, func(cmd *cobra.Command, args []string) error {
			img, err := readImageFile(args[1])
			if err != nil {
				return err
			}
			_, err = rt.app.Users.UpdateProfileImage(cmd.Context(), domain.ProfileImageForm{
				Username: args[0],
				Image:    img,
			})
			if err != nil {
				return reported(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d%%)\n", img.Name, rt.app.Users.State().UploadProgress)
			return nil
		}),
	}
}

// userFlags are the fields of the add and update forms.
type userFlags struct {
	firstName string
	lastName  string
	username  string
	email     string
	role      string
	active    bool
	notLocked bool
	image     string
}

func (f *userFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.firstName, "first-name", "", "first name")
	fl.StringVar(&f.lastName, "last-name", "", "last name")
	fl.StringVarP(&f.username, "username", "u", "", "username")
	fl.StringVar(&f.email, "email", "", "email address")
	fl.StringVar(&f.role, "role", string(domain.RoleUser), "USER, MANAGER, ADMIN or SUPER_ADMIN")
	fl.BoolVar(&f.active, "active", true, "account is active")
	fl.BoolVar(&f.notLocked, "not-locked", true, "account is not locked")
	fl.StringVar(&f.image, "image", "", "profile image file")
}

func (f *userFlags) form() (domain.UserForm, error) {
	role, ok := domain.ParseRole(f.role)
	if !ok {
		return domain.UserForm{}, fmt.Errorf("unknown role %q", f.role)
	}

	form := domain.UserForm{
		FirstName: f.firstName,
		LastName:  f.lastName,
		Username:  f.username,
		Email:     f.email,
		Role:      role,
		Active:    f.active,
		NotLocked: f.notLocked,
	}
	if f.image != "" {
		img, err := readImageFile(f.image)
		if err != nil {
			return domain.UserForm{}, err
		}
		form.ProfileImage = img
	}
	return form, nil
}

func readImageFile(path string) (*domain.ImageFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &domain.ImageFile{Name: filepath.Base(path), Content: content}, nil
}

func printUsers(out io.Writer, users []domain.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(out, "No users")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tEMAIL\tROLE\tACTIVE\tLOCKED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%t\n",
			u.Username, u.FullName(), u.Email, u.Role, u.Active, !u.NotLocked)
	}
	return w.Flush()
}
