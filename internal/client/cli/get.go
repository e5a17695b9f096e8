package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	id, err := parseID(args, "contacts get <id>")
	if err != nil {
		return err
	}

	contact, err := c.fetchContact(ctx, id)
	if err != nil {
		return err
	}

	if err := contactTmpl.Execute(c.io, contact); err != nil {
		return fmt.Errorf("failed to render contact: %w", err)
	}
	return nil
}

func (c *Cli) fetchContact(ctx context.Context, id int64) (*pkgapi.Contact, error) {
	var contact *pkgapi.Contact
	err := c.withToken(ctx, func(token string) error {
		var err error
		contact, err = c.apiClient.GetContact(ctx, token, id)
		return err
	})
	return contact, err
}
