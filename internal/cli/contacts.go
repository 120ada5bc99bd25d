package cli

import (
	"fmt"

	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// contactFields are the editable contact flags shared by add and update.
type contactFields struct {
	name      string
	phone     string
	address   string
	age       int
	hobbies   string
	latitude  float64
	longitude float64
	image     string
}

func (f *contactFields) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "contact name")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.address, "address", "", "postal address")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.StringVar(&f.hobbies, "hobbies", "", "hobbies")
	fs.Float64Var(&f.latitude, "lat", 0, "latitude")
	fs.Float64Var(&f.longitude, "lon", 0, "longitude")
	fs.StringVar(&f.image, "image", "", "profile image as base64 or a data URL")
}

// apply copies the flags that were set on the command line into c.
func (f *contactFields) apply(fs *pflag.FlagSet, c *models.Contact) {
	str := func(flag, v string, dst **string) {
		if fs.Changed(flag) {
			*dst = models.NonEmpty(&v)
		}
	}

	if fs.Changed("name") {
		c.Name = f.name
	}
	str("phone", f.phone, &c.Phone)
	str("address", f.address, &c.Address)
	str("hobbies", f.hobbies, &c.Hobbies)
	str("image", f.image, &c.ProfileImage)
	if fs.Changed("age") {
		c.Age = models.Ptr(f.age)
	}
	if fs.Changed("lat") {
		c.Latitude = models.Ptr(f.latitude)
	}
	if fs.Changed("lon") {
		c.Longitude = models.Ptr(f.longitude)
	}
}

func newContactsCommand(get func() *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"c"},
		Short:   "Manage the contacts of the signed-in user",
	}

	cmd.AddCommand(
		newContactsListCommand(get),
		newContactsShowCommand(get),
		newContactsAddCommand(get),
		newContactsUpdateCommand(get),
		newContactsDeleteCommand(get),
	)
	return cmd
}

func newContactsListCommand(get func() *Runtime) *cobra.Command {
	var grouped bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List contacts sorted by name",
		Args:    cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			sess, err := rt.currentSession(ctx)
			if err != nil {
				return err
			}

			if grouped {
				groups, err := rt.core.Contacts.Grouped(ctx, sess)
				if err != nil {
					return err
				}
				writeGroups(cmd.OutOrStdout(), groups)
				return nil
			}

			list, err := rt.core.Contacts.List(ctx, sess)
			if err != nil {
				return err
			}
			writeContacts(cmd.OutOrStdout(), list)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&grouped, "grouped", "g", false, "group by initial letter")
	return cmd
}

func newContactsShowCommand(get func() *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			sess, err := rt.currentSession(ctx)
			if err != nil {
				return err
			}

			c, err := rt.core.Contacts.Get(ctx, sess, args[0])
			if err != nil {
				return err
			}
			url, err := rt.core.Contacts.ProfileImageURL(ctx, sess, c.ID)
			if err != nil {
				rt.log.Warn(ctx, "profile image url failed", "id", c.ID, "error", err)
			}
			writeContact(cmd.OutOrStdout(), c, url)
			return nil
		}),
	}
}

func newContactsAddCommand(get func() *Runtime) *cobra.Command {
	fields := &contactFields{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			sess, err := rt.currentSession(ctx)
			if err != nil {
				return err
			}

			c := &models.Contact{}
			fields.apply(cmd.Flags(), c)
			if err := rt.core.Contacts.Create(ctx, sess, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s).\n", c.Name, c.ID)
			return nil
		}),
	}

	fields.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newContactsUpdateCommand(get func() *Runtime) *cobra.Command {
	fields := &contactFields{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a contact",
		Long: `Change the given fields of a contact. Fields not named on the command
line keep their current value; pass an empty string to clear a text field.`,
		Args: cobra.ExactArgs(1),
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			sess, err := rt.currentSession(ctx)
			if err != nil {
				return err
			}

			c, err := rt.core.Contacts.Get(ctx, sess, args[0])
			if err != nil {
				return err
			}
			fields.apply(cmd.Flags(), c)
			if err := rt.core.Contacts.Update(ctx, sess, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s.\n", c.ID)
			return nil
		}),
	}

	fields.bind(cmd.Flags())
	return cmd
}

func newContactsDeleteCommand(get func() *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a contact",
		Args:    cobra.ExactArgs(1),
		RunE: withRuntime(get, func(cmd *cobra.Command, args []string, rt *Runtime) error {
			ctx := cmd.Context()
			sess, err := rt.currentSession(ctx)
			if err != nil {
				return err
			}
			if err := rt.core.Contacts.Delete(ctx, sess, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		}),
	}
}
