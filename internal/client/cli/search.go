package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/contactbook/internal/client/api"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

func (c *Cli) runSearch(ctx context.Context, args []string) error {
	var q api.SearchQuery
	flags := newFlagSet("search")
	flags.StringVar(&q.FirstName, "first", "", "contact first name")
	flags.StringVar(&q.LastName, "last", "", "contact last name")
	flags.StringVar(&q.Email, "email", "", "contact email")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	if q == (api.SearchQuery{}) {
		return fmt.Errorf("provide at least one of -first, -last, -email")
	}

	var contacts []pkgapi.Contact
	err := c.withToken(ctx, func(token string) error {
		var err error
		contacts, err = c.apiClient.SearchContacts(ctx, token, q)
		return err
	})
	if err != nil {
		return err
	}

	c.io.Println("=== Search Results ===")
	c.io.Println()
	return c.printContacts(contacts)
}
