package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	flags := newFlagSet("delete")
	yes := flags.Bool("y", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	id, err := parseID(flags.Args(), "contacts delete [-y] <id>")
	if err != nil {
		return err
	}

	c.io.Println("=== Delete Contact ===")
	c.io.Println()

	if !*yes {
		contact, err := c.fetchContact(ctx, id)
		if err != nil {
			return err
		}

		c.io.Println("About to delete:")
		c.io.Printf("  Name:  %s %s\n", contact.FirstName, contact.LastName)
		c.io.Printf("  Email: %s\n", contact.Email)
		c.io.Println()

		confirm, err := c.io.ReadInput("Are you sure you want to delete this contact? (yes/no): ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm != "yes" && confirm != "y" {
			c.io.Println()
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	err = c.withToken(ctx, func(token string) error {
		return c.apiClient.DeleteContact(ctx, token, id)
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Contact deleted successfully!")
	return nil
}
