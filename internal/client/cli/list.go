package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

const defaultPageLimit = 100

func (c *Cli) runList(ctx context.Context, args []string) error {
	flags := newFlagSet("list")
	skip := flags.Int("skip", 0, "number of contacts to skip")
	limit := flags.Int("limit", defaultPageLimit, "maximum number of contacts")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	var contacts []pkgapi.Contact
	err := c.withToken(ctx, func(token string) error {
		var err error
		contacts, err = c.apiClient.ListContacts(ctx, token, *skip, *limit)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println("=== Contacts ===")
	c.io.Println()
	if len(contacts) == 0 {
		c.io.Println("No contacts found.")
		c.io.Println()
		c.io.Println("Use 'contacts add' to add your first contact.")
		return nil
	}
	return c.printContacts(contacts)
}

func (c *Cli) runBirthdays(ctx context.Context, args []string) error {
	flags := newFlagSet("birthdays")
	limit := flags.Int("limit", defaultPageLimit, "maximum number of contacts")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	var contacts []pkgapi.Contact
	err := c.withToken(ctx, func(token string) error {
		var err error
		contacts, err = c.apiClient.Birthdays(ctx, token, 0, *limit)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println("=== Upcoming Birthdays (next 7 days) ===")
	c.io.Println()
	if len(contacts) == 0 {
		c.io.Println("No upcoming birthdays.")
		return nil
	}
	return c.printContacts(contacts)
}

func (c *Cli) printContacts(contacts []pkgapi.Contact) error {
	c.io.Printf("Found %d contact(s):\n", len(contacts))
	c.io.Println()
	for i := range contacts {
		if err := contactRowTmpl.Execute(c.io, &contacts[i]); err != nil {
			return fmt.Errorf("failed to render contact: %w", err)
		}
		c.io.Println()
	}
	return nil
}
