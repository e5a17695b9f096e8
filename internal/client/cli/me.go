package cli

import (
	"context"
	"fmt"

	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

func (c *Cli) runMe(ctx context.Context) error {
	var user *pkgapi.User
	err := c.withToken(ctx, func(token string) error {
		var err error
		user, err = c.apiClient.Me(ctx, token)
		return err
	})
	if err != nil {
		return err
	}

	if err := profileTmpl.Execute(c.io, user); err != nil {
		return fmt.Errorf("failed to render profile: %w", err)
	}
	return nil
}
