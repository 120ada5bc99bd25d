package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/agenda/internal/images"
	"github.com/dmitrijs2005/agenda/internal/models"
)

func summary(c models.Contact) string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Phone != nil {
		b.WriteString(" · " + *c.Phone)
	}
	return b.String()
}

func writeContacts(w io.Writer, list []models.Contact) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No contacts.")
		return
	}
	for _, c := range list {
		fmt.Fprintf(w, "%s  %s\n", c.ID, summary(c))
	}
}

func writeGroups(w io.Writer, groups []models.ContactGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No contacts.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Letter, len(g.Contacts))
		for _, c := range g.Contacts {
			fmt.Fprintf(w, "  %s\n", summary(c))
		}
	}
}

func writeContact(w io.Writer, c *models.Contact, imageURL string) {
	field := func(name, value string) {
		fmt.Fprintf(w, "%-9s %s\n", name+":", value)
	}

	field("ID", c.ID)
	field("Name", c.Name)
	if c.Phone != nil {
		field("Phone", *c.Phone)
	}
	if c.Address != nil {
		field("Address", *c.Address)
	}
	if c.Age != nil {
		field("Age", strconv.Itoa(*c.Age))
	}
	if c.Hobbies != nil {
		field("Hobbies", *c.Hobbies)
	}
	if c.Latitude != nil && c.Longitude != nil {
		field("Location", fmt.Sprintf("%.6f, %.6f", *c.Latitude, *c.Longitude))
	}
	switch {
	case imageURL != "":
		field("Image", imageURL)
	case c.ProfileImage != nil && images.IsRef(*c.ProfileImage):
		field("Image", *c.ProfileImage)
	case c.ProfileImage != nil:
		field("Image", "inline")
	}
	field("Created", c.CreatedAt.Format("2006-01-02 15:04"))
}

func writeUsers(w io.Writer, list []models.User) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	for _, u := range list {
		fmt.Fprintf(w, "%s  %s <%s>  %s\n", u.Username, u.Name, u.Email, u.RegistrationDate.Format("2006-01-02"))
	}
}
